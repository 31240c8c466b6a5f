package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyStore wraps a MemoryStore and fails writes or removes for chosen keys.
type faultyStore struct {
	*MemoryStore
	mu         sync.Mutex
	failSet    map[string]bool
	failRemove map[string]bool
	failGet    bool
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		MemoryStore: NewMemoryStore(),
		failSet:     make(map[string]bool),
		failRemove:  make(map[string]bool),
	}
}

func (f *faultyStore) setFailSet(key string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet[key] = fail
}

func (f *faultyStore) setFailRemove(key string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRemove[key] = fail
}

func (f *faultyStore) Get(key string) (string, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return "", errors.New("quota exceeded")
	}
	return f.MemoryStore.Get(key)
}

func (f *faultyStore) Set(key, value string) error {
	f.mu.Lock()
	fail := f.failSet[key]
	f.mu.Unlock()
	if fail {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(key, value)
}

func (f *faultyStore) Remove(key string) error {
	f.mu.Lock()
	fail := f.failRemove[key]
	f.mu.Unlock()
	if fail {
		return errors.New("storage locked")
	}
	return f.MemoryStore.Remove(key)
}

type testUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func TestWebAdapter_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	a := NewWebAdapter(NewMemoryStore(), nil)

	_, ok := a.GetToken(ctx)
	assert.False(t, ok)

	a.SetToken(ctx, "tok-1")
	tok, ok := a.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok-1", tok)

	a.SetRefreshToken(ctx, "ref-1")
	ref, ok := a.GetRefreshToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "ref-1", ref)

	a.ClearToken(ctx)
	_, ok = a.GetToken(ctx)
	assert.False(t, ok)
	_, ok = a.GetRefreshToken(ctx)
	assert.True(t, ok, "ClearToken only removes the access token")
}

func TestWebAdapter_EmptyTokenIsAbsent(t *testing.T) {
	ctx := context.Background()
	a := NewWebAdapter(NewMemoryStore(), nil)
	a.SetToken(ctx, "")
	_, ok := a.GetToken(ctx)
	assert.False(t, ok)
}

func TestWebAdapter_User(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewWebAdapter(store, nil)

	var u testUser
	assert.False(t, a.GetUser(ctx, &u))

	a.SetUser(ctx, testUser{ID: "u1", Email: "ana@example.com"})
	require.True(t, a.GetUser(ctx, &u))
	assert.Equal(t, testUser{ID: "u1", Email: "ana@example.com"}, u)

	require.NoError(t, store.Set(KeyUser, "{not json"))
	var corrupt testUser
	assert.False(t, a.GetUser(ctx, &corrupt), "corrupt snapshot reads as absent")
}

func TestWebAdapter_UnencodableUser(t *testing.T) {
	ctx := context.Background()
	a := NewWebAdapter(NewMemoryStore(), nil)
	a.SetUser(ctx, testUser{ID: "u1"})

	a.SetUser(ctx, map[string]any{"bad": func() {}})
	var u testUser
	assert.False(t, a.GetUser(ctx, &u), "failed encode must not leave the previous snapshot readable")
}

func TestWebAdapter_Items(t *testing.T) {
	ctx := context.Background()
	a := NewWebAdapter(NewMemoryStore(), nil)

	a.SetItem(ctx, "theme", "dark")
	v, ok := a.GetItem(ctx, "theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	a.RemoveItem(ctx, "theme")
	_, ok = a.GetItem(ctx, "theme")
	assert.False(t, ok)
}

func TestWebAdapter_FailedWriteReadsAbsent(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	a := NewWebAdapter(store, nil)

	a.SetToken(ctx, "old")
	store.setFailSet(KeyToken, true)
	a.SetToken(ctx, "new")

	_, ok := a.GetToken(ctx)
	assert.False(t, ok, "a failed write must never leave the stale value readable")

	store.setFailSet(KeyToken, false)
	a.SetToken(ctx, "newer")
	tok, ok := a.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "newer", tok)
}

func TestWebAdapter_FailedWriteWithStuckValue(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	a := NewWebAdapter(store, nil)

	a.SetUser(ctx, testUser{ID: "old"})
	store.setFailSet(KeyUser, true)
	store.setFailRemove(KeyUser, true)
	a.SetUser(ctx, testUser{ID: "new"})

	var u testUser
	assert.False(t, a.GetUser(ctx, &u))
}

func TestWebAdapter_ReadFailureIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	a := NewWebAdapter(store, nil)
	a.SetToken(ctx, "tok")

	store.mu.Lock()
	store.failGet = true
	store.mu.Unlock()

	_, ok := a.GetToken(ctx)
	assert.False(t, ok)
}

func TestWebAdapter_ClearAllContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	a := NewWebAdapter(store, nil)

	a.SetToken(ctx, "tok")
	a.SetRefreshToken(ctx, "ref")
	a.SetUser(ctx, testUser{ID: "u1"})
	a.SetItem(ctx, "theme", "dark")

	store.setFailRemove(KeyRefreshToken, true)
	a.ClearAll(ctx)

	_, ok := a.GetToken(ctx)
	assert.False(t, ok)
	_, ok = a.GetRefreshToken(ctx)
	assert.False(t, ok, "a slot whose removal failed reads as absent")
	var u testUser
	assert.False(t, a.GetUser(ctx, &u))

	v, ok := a.GetItem(ctx, "theme")
	assert.True(t, ok, "ClearAll leaves generic items alone")
	assert.Equal(t, "dark", v)
}

func TestMobileAdapter_RoutesSlots(t *testing.T) {
	ctx := context.Background()
	secrets := NewMemoryStore()
	kv := NewMemoryStore()
	a := NewMobileAdapter(secrets, kv, nil)

	a.SetToken(ctx, "tok")
	a.SetRefreshToken(ctx, "ref")
	a.SetUser(ctx, testUser{ID: "u1"})
	a.SetItem(ctx, "last_sync", "2026-01-01")

	_, err := secrets.Get(KeyToken)
	assert.NoError(t, err)
	_, err = secrets.Get(KeyRefreshToken)
	assert.NoError(t, err)
	_, err = kv.Get(KeyUser)
	assert.NoError(t, err)
	_, err = kv.Get("last_sync")
	assert.NoError(t, err)

	assert.Equal(t, 2, secrets.Len())
	assert.Equal(t, 2, kv.Len())

	a.ClearAll(ctx)
	assert.Equal(t, 0, secrets.Len())
	assert.Equal(t, 1, kv.Len())
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var a Adapter = NewNoop()

	a.SetToken(ctx, "tok")
	a.SetUser(ctx, testUser{ID: "u1"})
	a.SetItem(ctx, "k", "v")
	a.ClearAll(ctx)

	_, ok := a.GetToken(ctx)
	assert.False(t, ok)
	var u testUser
	assert.False(t, a.GetUser(ctx, &u))
	_, ok = a.GetItem(ctx, "k")
	assert.False(t, ok)
}

func TestAdapter_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	a := NewWebAdapter(NewMemoryStore(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.SetToken(ctx, "tok")
			a.GetToken(ctx)
			a.ClearAll(ctx)
		}()
	}
	wg.Wait()
}
