package store

import (
	"context"
	"time"

	"github.com/serroba/paylink/internal/cache"
)

// RateLimitCacheStore implements ratelimit.Store as fixed-window counters
// in a cache.Store. The key itself is the counter: the first hit creates it
// with the window as TTL and later hits only increment it, so a client can
// briefly exceed the limit across a window boundary.
type RateLimitCacheStore struct {
	cache cache.Store
}

// NewRateLimitCacheStore creates a cache-backed rate limit store.
func NewRateLimitCacheStore(c cache.Store) *RateLimitCacheStore {
	return &RateLimitCacheStore{cache: c}
}

func (s *RateLimitCacheStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	return s.cache.Incr(ctx, key, window)
}
