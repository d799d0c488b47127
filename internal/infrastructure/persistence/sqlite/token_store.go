// Package sqlite implements a local SQLite-backed slot for the session
// token, for machines without Redis or PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

const schema = `
CREATE TABLE IF NOT EXISTS client_kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// TokenStore keeps the session token in a SQLite database file.
type TokenStore struct {
	db *sqlx.DB
}

var _ session.TokenStore = (*TokenStore)(nil)

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*TokenStore, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &TokenStore{db: db}, nil
}

// Close closes the database.
func (s *TokenStore) Close() error {
	return s.db.Close()
}

// Load implements session.TokenStore.
func (s *TokenStore) Load(ctx context.Context, key string) (string, error) {
	var token string
	err := s.db.GetContext(ctx, &token, `SELECT value FROM client_kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite load token: %w", err)
	}
	return token, nil
}

// Save implements session.TokenStore.
func (s *TokenStore) Save(ctx context.Context, key, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, token,
	)
	if err != nil {
		return fmt.Errorf("sqlite save token: %w", err)
	}
	return nil
}

// Delete implements session.TokenStore.
func (s *TokenStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete token: %w", err)
	}
	return nil
}
