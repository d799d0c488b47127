// Package postgres keeps the session token in PostgreSQL, for deployments
// that already run a database next to the dashboard.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// maxConns caps the pool; the store holds a single row.
const maxConns = 4

// Connection is a small pgx pool dedicated to the token table.
type Connection struct {
	pool *pgxpool.Pool
}

// Connect parses databaseURL, opens a pool and pings it.
func Connect(ctx context.Context, databaseURL string) (*Connection, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse DATABASE_URL: %w", err)
	}
	if cfg.MaxConns == 0 || cfg.MaxConns > maxConns {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Connection{pool: pool}, nil
}

// Ping reports whether the database answers.
func (c *Connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Close closes the pool. Safe to call more than once.
func (c *Connection) Close() {
	c.pool.Close()
}
