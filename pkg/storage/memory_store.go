package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process store. It satisfies LocalStore, SecretStore
// and KVStore, which makes it the default for tests and ephemeral sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

var (
	_ LocalStore  = (*MemoryStore)(nil)
	_ SecretStore = (*MemoryStore)(nil)
	_ KVStore     = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStore) GetSecret(_ context.Context, key string) (string, error) {
	return m.Get(key)
}

func (m *MemoryStore) SetSecret(_ context.Context, key, value string) error {
	return m.Set(key, value)
}

func (m *MemoryStore) DeleteSecret(_ context.Context, key string) error {
	return m.Remove(key)
}

func (m *MemoryStore) GetValue(_ context.Context, key string) (string, error) {
	return m.Get(key)
}

func (m *MemoryStore) SetValue(_ context.Context, key, value string) error {
	return m.Set(key, value)
}

func (m *MemoryStore) DeleteValue(_ context.Context, key string) error {
	return m.Remove(key)
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
