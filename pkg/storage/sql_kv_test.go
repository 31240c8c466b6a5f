package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteKV(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	kv, err := OpenSQLiteKV(ctx, path)
	require.NoError(t, err)
	defer kv.Close()

	_, err = kv.GetValue(ctx, KeyUser)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.SetValue(ctx, KeyUser, `{"id":"u1"}`))
	require.NoError(t, kv.SetValue(ctx, KeyUser, `{"id":"u2"}`))
	v, err := kv.GetValue(ctx, KeyUser)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u2"}`, v)

	require.NoError(t, kv.DeleteValue(ctx, KeyUser))
	require.NoError(t, kv.DeleteValue(ctx, KeyUser))
	_, err = kv.GetValue(ctx, KeyUser)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteKV_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	kv, err := OpenSQLiteKV(ctx, path)
	require.NoError(t, err)
	require.NoError(t, kv.SetValue(ctx, "last_sync", "2026-03-01"))
	require.NoError(t, kv.Close())

	kv, err = OpenSQLiteKV(ctx, path)
	require.NoError(t, err)
	defer kv.Close()
	v, err := kv.GetValue(ctx, "last_sync")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", v)
}

func TestOpen_MobileWithSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, closeFn, err := Open(ctx, Options{Variant: VariantMobile, Dir: dir, Passphrase: "pass", KV: KVSQLite}, nil)
	require.NoError(t, err)
	defer closeFn()

	a.SetToken(ctx, "tok")
	a.SetUser(ctx, testUser{ID: "u1", Email: "bia@example.com"})

	tok, ok := a.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok", tok)

	var u testUser
	require.True(t, a.GetUser(ctx, &u))
	assert.Equal(t, "bia@example.com", u.Email)

	assert.FileExists(t, filepath.Join(dir, "session.db"))
	assert.FileExists(t, filepath.Join(dir, secretsFileName))
}

func TestOpen_Variants(t *testing.T) {
	ctx := context.Background()

	a, _, err := Open(ctx, Options{Variant: VariantMemory}, nil)
	require.NoError(t, err)
	_, ok := a.(*WebAdapter)
	assert.True(t, ok)

	a, _, err = Open(ctx, Options{Variant: VariantNone}, nil)
	require.NoError(t, err)
	_, ok = a.(Noop)
	assert.True(t, ok)

	a, _, err = Open(ctx, Options{Variant: VariantMobile, Dir: t.TempDir(), Passphrase: "p", KV: KVMemory}, nil)
	require.NoError(t, err)
	_, ok = a.(*MobileAdapter)
	assert.True(t, ok)

	_, _, err = Open(ctx, Options{Variant: "desktop"}, nil)
	assert.Error(t, err)

	_, _, err = Open(ctx, Options{Variant: VariantMobile, Dir: t.TempDir(), Passphrase: "p", KV: "redis"}, nil)
	assert.Error(t, err)

	_, _, err = Open(ctx, Options{Variant: VariantMobile, Dir: t.TempDir()}, nil)
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}
