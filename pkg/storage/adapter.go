// Package storage holds the credential and value stores the API client reads
// its bearer token from.
//
// Every Adapter method is fail-soft: read failures surface as "absent" and
// write failures are logged and swallowed. A slot whose last write failed
// reads as absent until it is written successfully again.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Logical slot keys shared by every variant.
const (
	KeyToken        = "fayol_token"
	KeyRefreshToken = "fayol_refresh_token"
	KeyUser         = "fayol_user"
)

// ErrNotFound is returned by backends when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Adapter is the uniform credential and value store contract.
type Adapter interface {
	GetToken(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string)
	ClearToken(ctx context.Context)

	GetRefreshToken(ctx context.Context) (string, bool)
	SetRefreshToken(ctx context.Context, token string)

	// GetUser decodes the stored user snapshot into out. It returns false
	// when no snapshot is stored or it cannot be decoded.
	GetUser(ctx context.Context, out any) bool
	SetUser(ctx context.Context, user any)

	// ClearAll removes token, refresh token and user.
	ClearAll(ctx context.Context)

	GetItem(ctx context.Context, key string) (string, bool)
	SetItem(ctx context.Context, key, value string)
	RemoveItem(ctx context.Context, key string)
}

// backend is a context-aware string store. Get returns ErrNotFound for
// missing keys.
type backend interface {
	get(ctx context.Context, key string) (string, error)
	set(ctx context.Context, key, value string) error
	remove(ctx context.Context, key string) error
}

// failSoft implements Adapter on top of a router that picks the backend
// for each key.
type failSoft struct {
	variant string
	route   func(key string) backend
	logger  *zap.Logger

	mu      sync.Mutex
	invalid map[string]struct{}
}

func newFailSoft(variant string, route func(string) backend, logger *zap.Logger) *failSoft {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &failSoft{
		variant: variant,
		route:   route,
		logger:  logger.With(zap.String("variant", variant)),
		invalid: make(map[string]struct{}),
	}
}

func (s *failSoft) isInvalid(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.invalid[key]
	return ok
}

func (s *failSoft) markInvalid(key string, invalid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if invalid {
		s.invalid[key] = struct{}{}
	} else {
		delete(s.invalid, key)
	}
}

func (s *failSoft) read(ctx context.Context, key string) (string, bool) {
	if s.isInvalid(key) {
		return "", false
	}
	v, err := s.route(key).get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Failed to read storage key", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return v, true
}

func (s *failSoft) write(ctx context.Context, key, value string) {
	b := s.route(key)
	if err := b.set(ctx, key, value); err != nil {
		s.logger.Error("Failed to write storage key", zap.String("key", key), zap.Error(err))
		s.markInvalid(key, true)
		// Best effort: drop whatever the backend still holds for the key.
		_ = b.remove(ctx, key)
		return
	}
	s.markInvalid(key, false)
}

func (s *failSoft) delete(ctx context.Context, key string) {
	if err := s.route(key).remove(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("Failed to remove storage key", zap.String("key", key), zap.Error(err))
		// The value may survive in the backend; never serve it again.
		s.markInvalid(key, true)
		return
	}
	s.markInvalid(key, false)
}

func (s *failSoft) GetToken(ctx context.Context) (string, bool) {
	v, ok := s.read(ctx, KeyToken)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *failSoft) SetToken(ctx context.Context, token string) {
	s.write(ctx, KeyToken, token)
}

func (s *failSoft) ClearToken(ctx context.Context) {
	s.delete(ctx, KeyToken)
}

func (s *failSoft) GetRefreshToken(ctx context.Context) (string, bool) {
	v, ok := s.read(ctx, KeyRefreshToken)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *failSoft) SetRefreshToken(ctx context.Context, token string) {
	s.write(ctx, KeyRefreshToken, token)
}

func (s *failSoft) GetUser(ctx context.Context, out any) bool {
	v, ok := s.read(ctx, KeyUser)
	if !ok || v == "" {
		return false
	}
	if err := json.Unmarshal([]byte(v), out); err != nil {
		s.logger.Warn("Discarding corrupt user snapshot", zap.Error(err))
		return false
	}
	return true
}

func (s *failSoft) SetUser(ctx context.Context, user any) {
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("Failed to encode user snapshot", zap.Error(err))
		s.markInvalid(KeyUser, true)
		return
	}
	s.write(ctx, KeyUser, string(data))
}

func (s *failSoft) ClearAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, key := range []string{KeyToken, KeyRefreshToken, KeyUser} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			s.delete(ctx, key)
		}(key)
	}
	wg.Wait()
}

func (s *failSoft) GetItem(ctx context.Context, key string) (string, bool) {
	return s.read(ctx, key)
}

func (s *failSoft) SetItem(ctx context.Context, key, value string) {
	s.write(ctx, key, value)
}

func (s *failSoft) RemoveItem(ctx context.Context, key string) {
	s.delete(ctx, key)
}
