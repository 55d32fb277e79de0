package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/paylink/internal/cache"
	"github.com/serroba/paylink/internal/shortener"
	"github.com/serroba/paylink/internal/store"
)

var errCacheDown = errors.New("cache down")

// failingCache wraps a MemoryCache and fails the selected operations.
type failingCache struct {
	*store.MemoryCache
	failGet    bool
	failSet    bool
	failDelete bool
}

func (f *failingCache) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errCacheDown
	}

	return f.MemoryCache.Get(ctx, key)
}

func (f *failingCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.failSet {
		return errCacheDown
	}

	return f.MemoryCache.Set(ctx, key, value, ttl)
}

func (f *failingCache) Delete(ctx context.Context, keys ...string) error {
	if f.failDelete {
		return errCacheDown
	}

	return f.MemoryCache.Delete(ctx, keys...)
}

var _ cache.Store = (*failingCache)(nil)

// countingStore counts reads that reach the durable store.
type countingStore struct {
	*store.MemoryStore
	gets   int
	exists int
	stats  int
}

func (c *countingStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	c.gets++

	return c.MemoryStore.GetByCode(ctx, code)
}

func (c *countingStore) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	c.exists++

	return c.MemoryStore.Exists(ctx, code)
}

func (c *countingStore) Stats(ctx context.Context, linkID int64) (*shortener.Stats, error) {
	c.stats++

	return c.MemoryStore.Stats(ctx, linkID)
}
