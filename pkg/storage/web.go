package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LocalStore is a synchronous persistent string store, the local-storage
// primitive behind the web variant.
type LocalStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// WebAdapter is the synchronous variant backed by a LocalStore.
type WebAdapter struct {
	*failSoft
	store LocalStore
}

var _ Adapter = (*WebAdapter)(nil)

// NewWebAdapter wraps store. The store is assumed to be usable; use OpenWeb
// to probe the environment first.
func NewWebAdapter(store LocalStore, logger *zap.Logger) *WebAdapter {
	a := &WebAdapter{store: store}
	b := localBackend{store: store}
	a.failSoft = newFailSoft("web", func(string) backend { return b }, logger)
	return a
}

// OpenWeb opens a FileStore under dir (the config dir when empty) and checks
// once that it can be written. When no local storage is available it
// returns a Noop adapter instead.
func OpenWeb(dir string, logger *zap.Logger) Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := OpenFileStore(dir)
	if err == nil {
		err = probe(store)
	}
	if err != nil {
		logger.Warn("Local storage unavailable, credentials will not persist", zap.Error(err))
		return NewNoop()
	}
	return NewWebAdapter(store, logger)
}

const probeKey = "__fayol_probe__"

func probe(store LocalStore) error {
	if err := store.Set(probeKey, "1"); err != nil {
		return fmt.Errorf("failed to write probe key: %w", err)
	}
	if err := store.Remove(probeKey); err != nil {
		return fmt.Errorf("failed to remove probe key: %w", err)
	}
	return nil
}

type localBackend struct {
	store LocalStore
}

func (b localBackend) get(_ context.Context, key string) (string, error) {
	return b.store.Get(key)
}

func (b localBackend) set(_ context.Context, key, value string) error {
	return b.store.Set(key, value)
}

func (b localBackend) remove(_ context.Context, key string) error {
	return b.store.Remove(key)
}
