// Package auth owns the authentication lifecycle of the dashboard:
// restoring a persisted session at startup, login, registration and
// logout. It writes the session store; nothing else does.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/trajectory-hub/student-dashboard/internal/application/sessionstore"
	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/metrics"
	"github.com/trajectory-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// IdentityGateway is the part of the backend the manager talks to.
type IdentityGateway interface {
	// Login exchanges credentials for a token.
	Login(ctx context.Context, email, password string) (string, error)

	// Register creates an account and returns its token.
	Register(ctx context.Context, email, password string, role session.Role) (string, error)

	// Me resolves an explicit token to its user.
	Me(ctx context.Context, token string) (session.User, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS & RESULTS
// ══════════════════════════════════════════════════════════════════════════════

// Credentials are the inputs of Login and Register.
type Credentials struct {
	Email    string
	Password string
}

// Validate validates the credentials.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return shared.ErrEmptyEmail
	}
	if c.Password == "" {
		return shared.ErrEmptyPassword
	}
	return nil
}

// RestoreResult is the outcome of Restore. Restore never fails at the
// type level: a rejected or unreadable token yields StateUnauthenticated
// and Cause records why, for diagnostics only.
type RestoreResult struct {
	State session.State
	User  *session.User
	Cause error
}

// ══════════════════════════════════════════════════════════════════════════════
// MANAGER
// ══════════════════════════════════════════════════════════════════════════════

// Manager drives the session state machine.
type Manager struct {
	store   *sessionstore.Store
	gateway IdentityGateway
	logger  *zap.Logger

	mu    sync.RWMutex
	state session.State
}

// NewManager creates a Manager in StateUnauthenticated.
func NewManager(store *sessionstore.Store, gateway IdentityGateway, log *zap.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		store:   store,
		gateway: gateway,
		logger:  log.With(logger.Component("auth")),
		state:   session.StateUnauthenticated,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() session.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated is true iff the store holds both a token and a user.
func (m *Manager) IsAuthenticated() bool {
	return m.store.Get().IsAuthenticated()
}

// Session returns a snapshot of the current session.
func (m *Manager) Session() session.Session {
	return m.store.Get()
}

func (m *Manager) setState(next session.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == next {
		return
	}
	if !m.state.CanTransitionTo(next) {
		m.logger.Warn("unexpected session transition",
			zap.String("from", m.state.String()), zap.String("to", next.String()))
	}
	m.state = next
}

// Restore verifies the token persisted by a previous run. On success the
// session becomes authenticated; on any failure the persisted token is
// discarded. Failures are logged, never returned as errors.
func (m *Manager) Restore(ctx context.Context) RestoreResult {
	if current := m.store.Get(); current.IsAuthenticated() {
		return RestoreResult{State: m.State(), User: current.User}
	}

	m.setState(session.StateRestoring)
	log := m.logger.With(logger.Operation("restore"))

	token, err := m.store.PersistedToken(ctx)
	if err != nil {
		log.Warn("read persisted token", zap.Error(err))
		return m.restoreFailed(ctx, err)
	}
	if token == "" {
		m.setState(session.StateUnauthenticated)
		return RestoreResult{State: session.StateUnauthenticated}
	}

	user, err := m.gateway.Me(ctx, token)
	if err != nil {
		log.Info("persisted token rejected", zap.Error(err))
		return m.restoreFailed(ctx, err)
	}

	if err := m.store.Set(ctx, token, user); err != nil {
		log.Warn("adopt restored session", zap.Error(err))
		return m.restoreFailed(ctx, err)
	}

	m.setState(session.StateAuthenticated)
	metrics.RecordSessionEvent("restore", true)
	log.Info("session restored", logger.UserID(user.ID))
	return RestoreResult{State: session.StateAuthenticated, User: &user}
}

func (m *Manager) restoreFailed(ctx context.Context, cause error) RestoreResult {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear rejected session", zap.Error(err))
	}
	m.setState(session.StateUnauthenticated)
	metrics.RecordSessionEvent("restore", false)
	return RestoreResult{State: session.StateUnauthenticated, Cause: cause}
}

// Login exchanges credentials for a token, verifies it through /me and
// only then commits it. A failure at any step leaves the session exactly
// as it was.
func (m *Manager) Login(ctx context.Context, email, password string) (session.User, error) {
	creds := Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return session.User{}, err
	}

	user, err := m.authenticate(ctx, "login", func() (string, error) {
		return m.gateway.Login(ctx, creds.Email, creds.Password)
	})
	if err != nil {
		return session.User{}, fmt.Errorf("login: %w", err)
	}
	return user, nil
}

// Register creates an account, then follows the same token and verify
// sequence as Login. An empty role registers a student.
func (m *Manager) Register(ctx context.Context, email, password string, role session.Role) (session.User, error) {
	creds := Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return session.User{}, err
	}
	if role == "" {
		role = session.RoleStudent
	}

	user, err := m.authenticate(ctx, "register", func() (string, error) {
		return m.gateway.Register(ctx, creds.Email, creds.Password, role)
	})
	if err != nil {
		return session.User{}, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

func (m *Manager) authenticate(ctx context.Context, op string, obtain func() (string, error)) (session.User, error) {
	log := m.logger.With(logger.Operation(op))

	token, err := obtain()
	if err != nil {
		metrics.RecordSessionEvent(op, false)
		log.Info("credential exchange failed", zap.Error(err))
		return session.User{}, err
	}

	user, err := m.gateway.Me(ctx, token)
	if err != nil {
		metrics.RecordSessionEvent(op, false)
		log.Warn("token verification failed", zap.Error(err))
		return session.User{}, err
	}

	if err := m.store.Set(ctx, token, user); err != nil {
		metrics.RecordSessionEvent(op, false)
		log.Error("commit session", zap.Error(err))
		return session.User{}, err
	}

	m.setState(session.StateAuthenticated)
	metrics.RecordSessionEvent(op, true)
	log.Info("authenticated", logger.UserID(user.ID), logger.Email(user.Email))
	return user, nil
}

// Logout drops the session and the persisted token. It makes no network
// call and cannot fail; a storage error is only logged.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("delete persisted token", zap.Error(err))
	}
	m.setState(session.StateUnauthenticated)
	metrics.RecordSessionEvent("logout", true)
	m.logger.Info("logged out")
}
