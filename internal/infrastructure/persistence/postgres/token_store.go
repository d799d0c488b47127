package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

// TokenStore keeps the session token in the client_kv table.
type TokenStore struct {
	conn *Connection
}

var _ session.TokenStore = (*TokenStore)(nil)

// NewTokenStore creates a TokenStore. Call Connection.Migrate first.
func NewTokenStore(conn *Connection) *TokenStore {
	return &TokenStore{conn: conn}
}

// Load implements session.TokenStore.
func (s *TokenStore) Load(ctx context.Context, key string) (string, error) {
	var token string
	err := s.conn.pool.QueryRow(ctx,
		`SELECT value FROM client_kv WHERE key = $1`, key,
	).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("postgres load token: %w", err)
	}
	return token, nil
}

// Save implements session.TokenStore.
func (s *TokenStore) Save(ctx context.Context, key, token string) error {
	_, err := s.conn.pool.Exec(ctx, `
		INSERT INTO client_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, token,
	)
	if err != nil {
		return fmt.Errorf("postgres save token: %w", err)
	}
	return nil
}

// Delete implements session.TokenStore.
func (s *TokenStore) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.pool.Exec(ctx, `DELETE FROM client_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres delete token: %w", err)
	}
	return nil
}
