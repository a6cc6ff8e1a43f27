package checkin

import (
	"context"
	"time"
)

const rateLimitWindow = time.Minute

// RateLimiter enforces fixed-window per-minute ceilings keyed by
// (actor, operation). Counters live in the shared KV store so limits
// hold across processes.
type RateLimiter struct {
	store KVStore
}

// NewRateLimiter creates a rate limiter over the given store.
func NewRateLimiter(store KVStore) *RateLimiter {
	return &RateLimiter{store: store}
}

// Allow increments the counter for key and reports whether the caller is
// within limitPerMinute. The increment and window reset are atomic in
// the store.
func (l *RateLimiter) Allow(ctx context.Context, key string, limitPerMinute int) (bool, error) {
	n, err := l.store.Incr(ctx, "rate:"+key, rateLimitWindow)
	if err != nil {
		return false, err
	}
	return n <= int64(limitPerMinute), nil
}
