package cache

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestCache_SetGet(t *testing.T) {
	c := New()
	c.Set("/accounts", []byte(`[{"id":1}]`), time.Minute)

	got, ok := c.Get("/accounts")
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(got))

	_, ok = c.Get("/missing")
	assert.False(t, ok)
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := New()
	value := []byte("abc")
	c.Set("k", value, time.Minute)
	value[0] = 'x'

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, _ := c.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.Set("/accounts", []byte("v"), 10*time.Second)

	clock.Advance(9 * time.Second)
	_, ok := c.Get("/accounts")
	assert.True(t, ok, "entry should be valid before TTL")

	clock.Advance(time.Second)
	_, ok = c.Get("/accounts")
	assert.False(t, ok, "entry should be absent once age reaches TTL")
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on read")
}

func TestCache_DefaultTTL(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.Set("k", []byte("v"), 0)
	clock.Advance(DefaultTTL - time.Millisecond)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)

	custom := New(WithClock(clock.Now), WithDefaultTTL(time.Second))
	custom.Set("k", []byte("v"), -1)
	clock.Advance(time.Second)
	_, ok = custom.Get("k")
	assert.False(t, ok)
}

func TestCache_Overwrite(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.Set("k", []byte("old"), 5*time.Second)
	clock.Advance(4 * time.Second)
	c.Set("k", []byte("new"), 5*time.Second)
	clock.Advance(4 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok, "overwrite should reset storedAt")
	assert.Equal(t, "new", string(got))
}

func TestCache_InvalidatePattern(t *testing.T) {
	c := New()
	c.Set(Key("/accounts", nil), []byte("1"), time.Minute)
	c.Set(Key("/accounts/42", nil), []byte("2"), time.Minute)
	c.Set(Key("/transactions", url.Values{"accountId": {"42"}}), []byte("3"), time.Minute)
	c.Set(Key("/categories", nil), []byte("4"), time.Minute)

	removed := c.InvalidatePattern("/accounts")
	assert.Equal(t, 2, removed)

	_, ok := c.Get("/accounts")
	assert.False(t, ok)
	_, ok = c.Get("/categories")
	assert.True(t, ok)
	_, ok = c.Get(Key("/transactions", url.Values{"accountId": {"42"}}))
	assert.True(t, ok)

	assert.Equal(t, 0, c.InvalidatePattern(""))
	assert.Equal(t, 0, c.InvalidatePattern("/budgets"))
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New()
	key := Key("/transactions", url.Values{"page": {"2"}})
	c.Set(key, []byte("a"), time.Minute)
	c.Set("/b", []byte("b"), time.Minute)

	c.Delete(key)
	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_Sweep(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.Set("short", []byte("1"), time.Second)
	c.Set("long", []byte("2"), time.Hour)
	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestCache_Stats(t *testing.T) {
	c := New()
	c.Set("k", []byte("v"), time.Minute)
	c.Get("k")
	c.Get("k")
	c.Get("nope")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestCache_SweeperStopsOnClose(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	c.Set("k", []byte("v"), time.Second)
	clock.Advance(time.Minute)

	c.StartSweeper(context.Background(), 5*time.Millisecond)
	c.StartSweeper(context.Background(), 5*time.Millisecond)

	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	c.Close()
	c.Close()
}

func TestCache_SweeperStopsOnContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	c.StartSweeper(ctx, time.Hour)
	cancel()

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close should return once the sweeper exits")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("/accounts/%d", i%5)
			for j := 0; j < 100; j++ {
				c.Set(key, []byte("v"), time.Minute)
				c.Get(key)
				if j%10 == 0 {
					c.InvalidatePattern("/accounts")
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 5)
}
