package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

func TestTokenStore_Plain(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewTokenStore(path, "")

	_, err := store.Load(ctx, session.TokenKey)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, store.Save(ctx, session.TokenKey, "tok-1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tok-1")

	token, err := NewTokenStore(path, "").Load(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	require.NoError(t, store.Delete(ctx, session.TokenKey))
	require.NoError(t, store.Delete(ctx, session.TokenKey))
	_, err = store.Load(ctx, session.TokenKey)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTokenStore_Sealed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewTokenStore(path, "correct horse")

	require.NoError(t, store.Save(ctx, session.TokenKey, "secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	token, err := NewTokenStore(path, "correct horse").Load(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)

	_, err = NewTokenStore(path, "wrong").Load(ctx, session.TokenKey)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = NewTokenStore(path, "").Load(ctx, session.TokenKey)
	assert.ErrorIs(t, err, ErrPassphraseRequired)
}

func TestTokenStore_RecoversFromUnreadableFile(t *testing.T) {
	ctx := context.Background()

	t.Run("passphrase changed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, NewTokenStore(path, "old").Save(ctx, session.TokenKey, "old-token"))

		store := NewTokenStore(path, "new")
		_, err := store.Load(ctx, session.TokenKey)
		require.ErrorIs(t, err, ErrDecrypt)

		require.NoError(t, store.Delete(ctx, session.TokenKey))
		_, err = os.Stat(path)
		assert.ErrorIs(t, err, os.ErrNotExist)

		require.NoError(t, store.Save(ctx, session.TokenKey, "new-token"))
		token, err := store.Load(ctx, session.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "new-token", token)
	})

	t.Run("passphrase removed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, NewTokenStore(path, "old").Save(ctx, session.TokenKey, "old-token"))

		store := NewTokenStore(path, "")
		require.NoError(t, store.Save(ctx, session.TokenKey, "plain-token"))
		token, err := store.Load(ctx, session.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "plain-token", token)
	})

	t.Run("corrupt json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		store := NewTokenStore(path, "")
		_, err := store.Load(ctx, session.TokenKey)
		require.ErrorIs(t, err, ErrCorrupt)

		require.NoError(t, store.Delete(ctx, session.TokenKey))
		require.NoError(t, store.Save(ctx, session.TokenKey, "tok"))
		token, err := store.Load(ctx, session.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})
}
