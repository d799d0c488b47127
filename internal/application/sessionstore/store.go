// Package sessionstore holds the current authentication token and verified
// user, and persists the token across process restarts.
//
// A Store is an explicitly owned instance: the auth manager writes to it,
// the resource gateway reads the token from it. There is no package-level
// session.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/pkg/logger"
)

// Store is the single owner of the in-memory Session. Writes are visible
// to every reader as soon as Set or Clear returns.
type Store struct {
	mu      sync.RWMutex
	current session.Session

	tokens session.TokenStore
	key    string
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the persistence key. Defaults to session.TokenKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store backed by tokens.
func New(tokens session.TokenStore, opts ...Option) *Store {
	s := &Store{
		tokens: tokens,
		key:    session.TokenKey,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("session_store"))
	return s
}

// Get returns a snapshot of the current session.
func (s *Store) Get() session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := session.Session{Token: s.current.Token}
	if s.current.User != nil {
		u := *s.current.User
		snap.User = &u
	}
	return snap
}

// Token returns the current token, or "" when there is none.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Set persists token and then replaces the in-memory session with
// (token, user). If persistence fails the session is left untouched.
func (s *Store) Set(ctx context.Context, token string, user session.User) error {
	if token == "" {
		return shared.ErrEmptyToken
	}

	if err := s.tokens.Save(ctx, s.key, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	s.mu.Lock()
	s.current = session.Session{Token: token, User: &user}
	s.mu.Unlock()

	s.logger.Debug("session set", logger.UserID(user.ID))
	return nil
}

// Clear drops the in-memory session and removes the persisted token.
// Memory is always cleared; a persistence error is returned for logging.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = session.Session{}
	s.mu.Unlock()

	if err := s.tokens.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete persisted token: %w", err)
	}
	s.logger.Debug("session cleared")
	return nil
}

// PersistedToken returns the token saved by a previous process, or "" when
// none is stored.
func (s *Store) PersistedToken(ctx context.Context) (string, error) {
	token, err := s.tokens.Load(ctx, s.key)
	if errors.Is(err, shared.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load persisted token: %w", err)
	}
	return token, nil
}
