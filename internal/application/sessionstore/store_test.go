package sessionstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/persistence/memory"
)

type failingTokens struct {
	session.TokenStore
	saveErr   error
	deleteErr error
}

func (f *failingTokens) Save(ctx context.Context, key, token string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.TokenStore.Save(ctx, key, token)
}

func (f *failingTokens) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.TokenStore.Delete(ctx, key)
}

func TestStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	tokens := memory.NewTokenStore()
	s := New(tokens)

	assert.False(t, s.Get().IsAuthenticated())
	assert.Empty(t, s.Token())

	user := session.User{ID: 7, Email: "ada@example.com", Role: session.RoleStudent}
	require.NoError(t, s.Set(ctx, "tok", user))

	got := s.Get()
	assert.True(t, got.IsAuthenticated())
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, user, *got.User)
	assert.Equal(t, "tok", s.Token())

	persisted, err := s.PersistedToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", persisted)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.Get().IsAuthenticated())
	assert.Empty(t, s.Token())

	persisted, err = s.PersistedToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(memory.NewTokenStore())
	require.NoError(t, s.Set(ctx, "tok", session.User{ID: 1, Email: "a@b.c"}))

	snap := s.Get()
	snap.User.Email = "mutated@b.c"

	assert.Equal(t, "a@b.c", s.Get().User.Email)
}

func TestStore_SetRejectsEmptyToken(t *testing.T) {
	s := New(memory.NewTokenStore())
	err := s.Set(context.Background(), "", session.User{ID: 1})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
	assert.False(t, s.Get().HasToken())
}

func TestStore_SetPersistFailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	tokens := &failingTokens{TokenStore: memory.NewTokenStore()}
	s := New(tokens)
	require.NoError(t, s.Set(ctx, "old", session.User{ID: 1}))

	tokens.saveErr = errors.New("disk full")
	err := s.Set(ctx, "new", session.User{ID: 2})
	require.Error(t, err)

	got := s.Get()
	assert.Equal(t, "old", got.Token)
	assert.Equal(t, int64(1), got.User.ID)
}

func TestStore_ClearAlwaysClearsMemory(t *testing.T) {
	ctx := context.Background()
	tokens := &failingTokens{TokenStore: memory.NewTokenStore()}
	s := New(tokens)
	require.NoError(t, s.Set(ctx, "tok", session.User{ID: 1}))

	tokens.deleteErr = errors.New("unreachable")
	err := s.Clear(ctx)
	require.Error(t, err)
	assert.False(t, s.Get().HasToken())
}

func TestStore_WithKey(t *testing.T) {
	ctx := context.Background()
	tokens := memory.NewTokenStore()
	s := New(tokens, WithKey("custom"))
	require.NoError(t, s.Set(ctx, "tok", session.User{ID: 1}))

	v, err := tokens.Load(ctx, "custom")
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	_, err = tokens.Load(ctx, session.TokenKey)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
