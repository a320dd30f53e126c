package cache

import (
	"context"
	"time"
)

// Entry is a cached agent response.
type Entry struct {
	Response  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is stale at now.
func (e Entry) Expired(now time.Time) bool { return now.After(e.ExpiresAt) }

// Store is a key/value backend for cache entries. Implementations must be
// safe for concurrent use. Expiry decisions are made by ResponseCache; a
// Store only has to honor the conditional deletes below.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	// DeleteExpired removes key only if its entry is expired at now, so a
	// fresh concurrent write is never lost.
	DeleteExpired(ctx context.Context, key string, now time.Time) error
	// Sweep removes all entries expired at now and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
	Len(ctx context.Context) (int, error)
}
