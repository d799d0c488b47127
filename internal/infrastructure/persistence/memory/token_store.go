// Package memory implements a process-local token slot. Nothing survives
// a restart; used by tests and by SESSION_STORE=memory.
package memory

import (
	"context"
	"sync"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

// TokenStore is a map guarded by a mutex.
type TokenStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ session.TokenStore = (*TokenStore)(nil)

// NewTokenStore creates an empty TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{values: make(map[string]string)}
}

// Load implements session.TokenStore.
func (s *TokenStore) Load(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", shared.ErrNotFound
	}
	return v, nil
}

// Save implements session.TokenStore.
func (s *TokenStore) Save(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = token
	return nil
}

// Delete implements session.TokenStore.
func (s *TokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
