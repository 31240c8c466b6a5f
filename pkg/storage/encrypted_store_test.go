package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptedFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenEncryptedFileStore(dir, "correct horse")
	require.NoError(t, err)

	_, err = s.GetSecret(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetSecret(ctx, KeyToken, "eyJhbGciOi.secret"))
	v, err := s.GetSecret(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.secret", v)

	reopened, err := OpenEncryptedFileStore(dir, "correct horse")
	require.NoError(t, err)
	v, err = reopened.GetSecret(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.secret", v)

	require.NoError(t, reopened.DeleteSecret(ctx, KeyToken))
	require.NoError(t, reopened.DeleteSecret(ctx, KeyToken))
	_, err = reopened.GetSecret(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEncryptedFileStore_NoPlaintextOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenEncryptedFileStore(dir, "pass")
	require.NoError(t, err)
	require.NoError(t, s.SetSecret(ctx, KeyRefreshToken, "super-secret-refresh"))

	data, err := os.ReadFile(filepath.Join(dir, secretsFileName))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "super-secret-refresh"))
}

func TestEncryptedFileStore_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenEncryptedFileStore(dir, "right")
	require.NoError(t, err)
	require.NoError(t, s.SetSecret(ctx, KeyToken, "tok"))

	wrong, err := OpenEncryptedFileStore(dir, "wrong")
	require.NoError(t, err)
	_, err = wrong.GetSecret(ctx, KeyToken)
	assert.Error(t, err)

	// Through the adapter the failure degrades to "unauthenticated".
	a := NewMobileAdapter(wrong, NewMemoryStore(), nil)
	_, ok := a.GetToken(ctx)
	assert.False(t, ok)
}

func TestEncryptedFileStore_ValuesBoundToKey(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenEncryptedFileStore(dir, "pass")
	require.NoError(t, err)
	require.NoError(t, s.SetSecret(ctx, KeyToken, "access"))
	require.NoError(t, s.SetSecret(ctx, KeyRefreshToken, "refresh"))

	path := filepath.Join(dir, secretsFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc secretsDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	doc.Items[KeyToken], doc.Items[KeyRefreshToken] = doc.Items[KeyRefreshToken], doc.Items[KeyToken]
	data, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	swapped, err := OpenEncryptedFileStore(dir, "pass")
	require.NoError(t, err)
	_, err = swapped.GetSecret(ctx, KeyToken)
	assert.Error(t, err)
}

func TestEncryptedFileStore_EmptyPassphrase(t *testing.T) {
	_, err := OpenEncryptedFileStore(t.TempDir(), "")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}
