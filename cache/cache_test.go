package cache

import (
	"context"
	"fmt"
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
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(clock *fakeClock, store Store) *ResponseCache {
	return New(store, func(o *Options) { o.Now = clock.Now })
}

func TestResponseCache_ReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := newTestCache(clock, nil)

	c.Set(ctx, "agent-1", "explain goroutines", "prompt", "they are cheap threads")
	got, ok := c.Get(ctx, "agent-1", "explain goroutines", "prompt")

	require.True(t, ok)
	assert.Equal(t, "they are cheap threads", got)
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestResponseCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewInMemoryStore()
	c := newTestCache(clock, store)

	c.Set(ctx, "agent-1", "hello", "prompt", "hi")
	clock.Advance(DefaultTTL)
	_, ok := c.Get(ctx, "agent-1", "hello", "prompt")
	require.True(t, ok, "entry is still fresh exactly at expiry")

	clock.Advance(time.Millisecond)
	_, ok = c.Get(ctx, "agent-1", "hello", "prompt")
	assert.False(t, ok)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "expired entry is deleted lazily on read")
}

func TestResponseCache_KeyedByTriple(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeClock(), nil)

	c.Set(ctx, "agent-1", "hello", "prompt", "a")

	_, ok := c.Get(ctx, "agent-2", "hello", "prompt")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "agent-1", "hello", "other prompt")
	assert.False(t, ok)
	got, ok := c.Get(ctx, "agent-1", "  HELLO ", "prompt")
	assert.True(t, ok, "message is normalized")
	assert.Equal(t, "a", got)
}

func TestResponseCache_PrivacyRule(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	c := newTestCache(newFakeClock(), store)

	c.Set(ctx, "agent-1", "what is my Password policy", "prompt", "answer")
	_, ok := c.Get(ctx, "agent-1", "what is my Password policy", "prompt")

	assert.False(t, ok)
	n, _ := store.Len(ctx)
	assert.Zero(t, n)
	assert.Equal(t, int64(2), c.Stats().Skipped)
	assert.False(t, c.Allowed("keep it confidential"))
	assert.True(t, c.Allowed("explain channels"))
}

func TestResponseCache_SweepOnThreshold(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewInMemoryStore()
	c := New(store, func(o *Options) {
		o.Now = clock.Now
		o.SweepThreshold = 3
	})

	for i := 0; i < 3; i++ {
		c.Set(ctx, "agent", fmt.Sprintf("old %d", i), "p", "r")
	}
	clock.Advance(DefaultTTL + time.Second)
	c.Set(ctx, "agent", "fresh", "p", "r")

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(3), c.Stats().Swept)
}

func TestResponseCache_ExplicitSweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := newTestCache(clock, nil)

	c.Set(ctx, "a", "m1", "p", "r")
	c.Set(ctx, "a", "m2", "p", "r")
	clock.Advance(time.Hour)

	assert.Equal(t, 2, c.Sweep(ctx))
	assert.Equal(t, 0, c.Sweep(ctx))
}

func TestResponseCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := New(nil, func(o *Options) { o.SweepThreshold = 10 })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := fmt.Sprintf("message %d", i%7)
			c.Set(ctx, "agent", msg, "p", msg)
			if got, ok := c.Get(ctx, "agent", msg, "p"); ok {
				assert.Equal(t, msg, got)
			}
			c.Sweep(ctx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), c.Stats().Writes)
}

func TestInMemoryStore_DeleteExpiredKeepsFreshEntry(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	now := time.Now()
	require.NoError(t, s.Set(ctx, "k", Entry{Response: "fresh", ExpiresAt: now.Add(time.Minute)}))

	require.NoError(t, s.DeleteExpired(ctx, "k", now))

	e, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fresh", e.Response)
}
