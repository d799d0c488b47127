package session

import "context"

// TokenKey is the fixed storage key of the persisted session token.
const TokenKey = "dashboard.session.token"

// TokenStore is a durable key-value slot for the session token.
// Implementations live in infrastructure/persistence.
type TokenStore interface {
	// Load returns the token stored under key.
	// Returns shared.ErrNotFound when nothing is stored.
	Load(ctx context.Context, key string) (string, error)

	// Save stores token under key, replacing any previous value.
	Save(ctx context.Context, key, token string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
