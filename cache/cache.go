package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/logging"
)

const (
	// DefaultTTL is how long a response stays fresh after it was written.
	DefaultTTL = 5 * time.Minute
	// DefaultSweepThreshold is the store size above which writes sweep expired entries.
	DefaultSweepThreshold = 100
)

// Options configure a ResponseCache.
type Options struct {
	TTL               time.Duration
	SweepThreshold    int
	SensitiveKeywords []string
	Now               func() time.Time
	Logger            logging.Logger
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Writes  int64 `json:"writes"`
	Skipped int64 `json:"skipped"` // Reads and writes bypassed by the privacy rule
	Swept   int64 `json:"swept"`
}

// ResponseCache implements core.ResponseCache on top of a Store.
type ResponseCache struct {
	store     Store
	ttl       time.Duration
	threshold int
	keywords  []string
	now       func() time.Time
	logger    logging.Logger

	hits, misses, writes, skipped, swept atomic.Int64
}

// New creates a ResponseCache. A nil store uses a fresh InMemoryStore.
func New(store Store, optFns ...func(o *Options)) *ResponseCache {
	opts := Options{
		TTL:               DefaultTTL,
		SweepThreshold:    DefaultSweepThreshold,
		SensitiveKeywords: DefaultSensitiveKeywords,
		Now:               time.Now,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if store == nil {
		store = NewInMemoryStore()
	}
	return &ResponseCache{
		store:     store,
		ttl:       opts.TTL,
		threshold: opts.SweepThreshold,
		keywords:  opts.SensitiveKeywords,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

// Allowed reports whether responses to message may be read from or written
// to the cache.
func (c *ResponseCache) Allowed(message string) bool {
	return !ContainsSensitive(message, c.keywords)
}

// Get implements core.ResponseCache. Expired entries are deleted and
// reported as a miss.
func (c *ResponseCache) Get(ctx context.Context, agentID, message, systemPrompt string) (string, bool) {
	if !c.Allowed(message) {
		c.skipped.Add(1)
		return "", false
	}
	key := Key(agentID, message, systemPrompt)
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "agent_id", agentID, "error", err)
		c.misses.Add(1)
		return "", false
	}
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	if now := c.now(); e.Expired(now) {
		if err := c.store.DeleteExpired(ctx, key, now); err != nil {
			c.logger.Warn("cache expiry failed", "agent_id", agentID, "error", err)
		}
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	logging.LogCacheEvent(c.logger, "hit", agentID, 0)
	return e.Response, true
}

// Set implements core.ResponseCache. Once the store holds more than the
// sweep threshold, all expired entries are removed.
func (c *ResponseCache) Set(ctx context.Context, agentID, message, systemPrompt, response string) {
	if !c.Allowed(message) {
		c.skipped.Add(1)
		return
	}
	now := c.now()
	err := c.store.Set(ctx, Key(agentID, message, systemPrompt), Entry{
		Response:  response,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	})
	if err != nil {
		c.logger.Warn("cache write failed", "agent_id", agentID, "error", err)
		return
	}
	c.writes.Add(1)

	n, err := c.store.Len(ctx)
	logging.LogCacheEvent(c.logger, "write", agentID, n)
	if err != nil || n <= c.threshold {
		return
	}
	c.Sweep(ctx)
}

// Sweep implements core.ResponseCache.
func (c *ResponseCache) Sweep(ctx context.Context) int {
	defer logging.StartTimer(c.logger, "cache_sweep")()
	n, err := c.store.Sweep(ctx, c.now())
	if err != nil {
		c.logger.Warn("cache sweep failed", "error", err)
		return n
	}
	c.swept.Add(int64(n))
	logging.LogCacheEvent(c.logger, "sweep", "", n)
	return n
}

// Stats returns a snapshot of the cache counters.
func (c *ResponseCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Writes:  c.writes.Load(),
		Skipped: c.skipped.Load(),
		Swept:   c.swept.Load(),
	}
}

var _ core.ResponseCache = (*ResponseCache)(nil)
