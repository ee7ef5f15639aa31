package auth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)

	session := &Session{
		AccessToken: "tok-123",
		User:        &User{ID: "u1", Email: "ana@example.com", FullName: "Ana"},
	}
	require.NoError(t, store.Save(session))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", loaded.AccessToken)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "Ana", loaded.User.FullName)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)

	// Clearing twice is fine.
	assert.NoError(t, store.Clear())
}

func TestFileStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(&Session{AccessToken: "tok"}))

	info, err := os.Stat(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("not json"), 0o600))

	_, err = store.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCredentials)
}

func TestFileStoreEmptyToken(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte(`{"auth_token":""}`), 0o600))

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}
