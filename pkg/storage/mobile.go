package storage

import (
	"context"

	"go.uber.org/zap"
)

// SecretStore is an encrypted keychain-style store. The mobile variant keeps
// the access and refresh tokens here.
type SecretStore interface {
	GetSecret(ctx context.Context, key string) (string, error)
	SetSecret(ctx context.Context, key, value string) error
	DeleteSecret(ctx context.Context, key string) error
}

// KVStore is a general asynchronous key/value store. The mobile variant
// keeps the user snapshot and generic items here.
type KVStore interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

// MobileAdapter splits slots between a SecretStore and a KVStore.
type MobileAdapter struct {
	*failSoft
	secrets SecretStore
	kv      KVStore
}

var _ Adapter = (*MobileAdapter)(nil)

// NewMobileAdapter creates the mobile variant.
func NewMobileAdapter(secrets SecretStore, kv KVStore, logger *zap.Logger) *MobileAdapter {
	a := &MobileAdapter{secrets: secrets, kv: kv}
	sb := secretBackend{store: secrets}
	kb := kvBackend{store: kv}
	a.failSoft = newFailSoft("mobile", func(key string) backend {
		if key == KeyToken || key == KeyRefreshToken {
			return sb
		}
		return kb
	}, logger)
	return a
}

type secretBackend struct {
	store SecretStore
}

func (b secretBackend) get(ctx context.Context, key string) (string, error) {
	return b.store.GetSecret(ctx, key)
}

func (b secretBackend) set(ctx context.Context, key, value string) error {
	return b.store.SetSecret(ctx, key, value)
}

func (b secretBackend) remove(ctx context.Context, key string) error {
	return b.store.DeleteSecret(ctx, key)
}

type kvBackend struct {
	store KVStore
}

func (b kvBackend) get(ctx context.Context, key string) (string, error) {
	return b.store.GetValue(ctx, key)
}

func (b kvBackend) set(ctx context.Context, key, value string) error {
	return b.store.SetValue(ctx, key, value)
}

func (b kvBackend) remove(ctx context.Context, key string) error {
	return b.store.DeleteValue(ctx, key)
}
