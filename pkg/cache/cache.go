// Package cache provides the time-boxed response cache used by the API client.
//
// Entries live for a fixed TTL and are removed lazily on read, by pattern
// invalidation, or by the periodic sweeper.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTTL is used when Set is called with a non-positive ttl.
	DefaultTTL = 60 * time.Second

	// DefaultSweepInterval is the sweeper period when none is given.
	DefaultSweepInterval = 5 * time.Minute
)

// Clock returns the current time.
type Clock func() time.Time

type entry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

func (e *entry) valid(now time.Time) bool {
	return now.Sub(e.storedAt) < e.ttl
}

// Stats holds cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
}

// Cache is a TTL map from canonical request keys to response bodies.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	defaultTTL time.Duration
	now        Clock
	logger     *zap.Logger

	hits      uint64
	misses    uint64
	evictions uint64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the time source.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithDefaultTTL sets the TTL used when Set receives a non-positive ttl.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithLogger sets the logger used for sweep diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]*entry),
		defaultTTL: DefaultTTL,
		now:        time.Now,
		logger:     zap.NewNop(),
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached value if present and not expired.
// An expired entry is evicted.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if !e.valid(c.now()) {
		delete(c.entries, key)
		c.evictions++
		c.misses++
		return nil, false
	}
	c.hits++
	return clone(e.value), true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		value:    clone(value),
		storedAt: c.now(),
		ttl:      ttl,
	}
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePattern removes every entry whose key contains pattern and
// returns how many were removed. An empty pattern matches nothing.
func (c *Cache) InvalidatePattern(pattern string) int {
	if pattern == "" {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Sweep removes all expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !e.valid(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.evictions += uint64(removed)
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.entries),
	}
}

// StartSweeper runs Sweep every interval in a goroutine until ctx is
// cancelled or Close is called. Calling it more than once has no effect.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					c.logger.Debug("Swept expired cache entries", zap.Int("removed", n))
				}
			}
		}
	}()
}

// Close stops the sweeper and waits for it to exit.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })

	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
