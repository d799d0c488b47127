package auth

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-hub/student-dashboard/internal/application/sessionstore"
	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/external/backend"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/persistence/file"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/persistence/memory"
	"github.com/trajectory-hub/student-dashboard/internal/testutil/fakebackend"
)

// process wires one "run" of the client against a token store.
type process struct {
	store   *sessionstore.Store
	manager *Manager
}

func newProcess(fb *fakebackend.Server, tokens session.TokenStore) process {
	store := sessionstore.New(tokens)
	client := backend.NewClient(backend.DefaultClientConfig(fb.URL), store)
	return process{store: store, manager: NewManager(store, client, nil)}
}

func assertConsistent(t *testing.T, m *Manager) {
	t.Helper()
	s := m.Session()
	assert.Equal(t, s.Token != "" && s.User != nil, m.IsAuthenticated())
	assert.Equal(t, s.Token != "", s.User != nil, "token and user must be set together")
}

func TestManager_LoginRestoreLogout(t *testing.T) {
	fb := fakebackend.New(t)
	id := fb.AddUser("a@b.com", "pw", "student")
	ctx := context.Background()
	p := newProcess(fb, memory.NewTokenStore())

	assert.Equal(t, session.StateUnauthenticated, p.manager.State())
	assertConsistent(t, p.manager)

	user, err := p.manager.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.True(t, p.manager.IsAuthenticated())
	assert.Equal(t, session.StateAuthenticated, p.manager.State())
	assertConsistent(t, p.manager)

	res := p.manager.Restore(ctx)
	assert.Equal(t, session.StateAuthenticated, res.State)
	assertConsistent(t, p.manager)

	p.manager.Logout(ctx)
	assert.False(t, p.manager.IsAuthenticated())
	assert.Equal(t, session.StateUnauthenticated, p.manager.State())
	assertConsistent(t, p.manager)

	persisted, err := p.store.PersistedToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestManager_FailedLoginLeavesSessionUnchanged(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	fb.AddUser("c@d.com", "pw2", "student")
	ctx := context.Background()

	t.Run("from unauthenticated", func(t *testing.T) {
		p := newProcess(fb, memory.NewTokenStore())
		before := p.manager.Session()

		_, err := p.manager.Login(ctx, "a@b.com", "wrong")
		require.Error(t, err)
		assert.True(t, shared.IsAuthFailure(err))

		assert.Equal(t, before, p.manager.Session())
		assert.Equal(t, session.StateUnauthenticated, p.manager.State())
	})

	t.Run("from authenticated", func(t *testing.T) {
		p := newProcess(fb, memory.NewTokenStore())
		_, err := p.manager.Login(ctx, "a@b.com", "pw")
		require.NoError(t, err)
		before := p.manager.Session()

		_, err = p.manager.Login(ctx, "c@d.com", "wrong")
		require.Error(t, err)

		assert.Equal(t, before, p.manager.Session())
		assert.Equal(t, session.StateAuthenticated, p.manager.State())
		persisted, err := p.store.PersistedToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, before.Token, persisted)
	})

	t.Run("verification fails after token issued", func(t *testing.T) {
		p := newProcess(fb, memory.NewTokenStore())
		fb.Fail(backend.PathMe, http.StatusInternalServerError, "identity service down")
		defer fb.Reset()

		_, err := p.manager.Login(ctx, "a@b.com", "pw")
		require.Error(t, err)
		assert.Equal(t, "identity service down", shared.DetailOf(err))
		assert.False(t, p.manager.Session().HasToken())

		persisted, err := p.store.PersistedToken(ctx)
		require.NoError(t, err)
		assert.Empty(t, persisted)
	})

	t.Run("empty credentials", func(t *testing.T) {
		p := newProcess(fb, memory.NewTokenStore())
		sent := len(fb.RequestsTo(backend.PathLogin))

		_, err := p.manager.Login(ctx, "", "pw")
		assert.ErrorIs(t, err, shared.ErrEmptyValue)
		_, err = p.manager.Login(ctx, "a@b.com", "")
		assert.ErrorIs(t, err, shared.ErrEmptyValue)
		assert.Len(t, fb.RequestsTo(backend.PathLogin), sent, "validation happens before any request")
	})
}

func TestManager_RestoreAcrossProcesses(t *testing.T) {
	fb := fakebackend.New(t)
	id := fb.AddUser("a@b.com", "pw", "student")
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first := newProcess(fb, file.NewTokenStore(path, ""))
	_, err := first.manager.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)
	token := first.manager.Session().Token
	require.NotEmpty(t, token)

	loginsBefore := len(fb.RequestsTo(backend.PathLogin))

	second := newProcess(fb, file.NewTokenStore(path, ""))
	assert.False(t, second.manager.IsAuthenticated())

	res := second.manager.Restore(ctx)
	require.NoError(t, res.Cause)
	assert.Equal(t, session.StateAuthenticated, res.State)
	require.NotNil(t, res.User)
	assert.Equal(t, id, res.User.ID)
	assert.Equal(t, token, second.manager.Session().Token)
	assert.Len(t, fb.RequestsTo(backend.PathLogin), loginsBefore, "credentials are not re-submitted")
	assertConsistent(t, second.manager)
}

func TestManager_RestoreWithRejectedToken(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	ctx := context.Background()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.Save(ctx, session.TokenKey, fb.TokenFor("a@b.com", -time.Minute)))

	p := newProcess(fb, tokens)
	res := p.manager.Restore(ctx)

	assert.Equal(t, session.StateUnauthenticated, res.State)
	assert.Nil(t, res.User)
	assert.True(t, shared.IsAuthFailure(res.Cause))
	assertConsistent(t, p.manager)

	_, err := tokens.Load(ctx, session.TokenKey)
	assert.ErrorIs(t, err, shared.ErrNotFound, "rejected token is discarded")
}

func TestManager_RestoreWithoutToken(t *testing.T) {
	fb := fakebackend.New(t)
	p := newProcess(fb, memory.NewTokenStore())

	res := p.manager.Restore(context.Background())
	assert.Equal(t, session.StateUnauthenticated, res.State)
	assert.NoError(t, res.Cause)
	assert.Empty(t, fb.RequestsTo(backend.PathMe))
}

func TestManager_Register(t *testing.T) {
	fb := fakebackend.New(t)
	ctx := context.Background()
	p := newProcess(fb, memory.NewTokenStore())

	user, err := p.manager.Register(ctx, "new@b.com", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, session.RoleStudent, user.Role)
	assert.True(t, p.manager.IsAuthenticated())

	other := newProcess(fb, memory.NewTokenStore())
	_, err = other.manager.Register(ctx, "new@b.com", "pw", session.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, "Email already registered", shared.DetailOf(err))
	assert.False(t, other.manager.IsAuthenticated())
}
