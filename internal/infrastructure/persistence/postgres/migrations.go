package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CLIENT_KV
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS client_kv (
    key        VARCHAR(200) PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

// Migrate creates the key-value table if it does not exist.
func (c *Connection) Migrate(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, migration001Up); err != nil {
		return fmt.Errorf("postgres: migration 001: %w", err)
	}
	return nil
}
