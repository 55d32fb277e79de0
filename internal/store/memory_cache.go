package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/serroba/paylink/internal/cache"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is an in-memory implementation of cache.Store with a
// replaceable clock, used by tests and single-process runs.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// WithClock overrides the time source used for expiry.
func (m *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = now

	return m
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return "", cache.ErrMiss
	}

	return e.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = cacheEntry{value: value, expiresAt: m.deadline(ttl)}

	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}

	return nil
}

func (m *MemoryCache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		m.entries[key] = cacheEntry{value: "1", expiresAt: m.deadline(ttl)}

		return 1, nil
	}

	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("incr %s: value is not an integer", key)
	}

	n++
	e.value = strconv.FormatInt(n, 10)
	m.entries[key] = e

	return n, nil
}

func (m *MemoryCache) Take(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return "", cache.ErrMiss
	}

	delete(m.entries, key)

	return e.value, nil
}

// Has reports whether key is present and unexpired.
func (m *MemoryCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.lookup(key)

	return ok
}

// lookup must be called with mu held. Expired entries are dropped.
func (m *MemoryCache) lookup(key string) (cacheEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return cacheEntry{}, false
	}

	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)

		return cacheEntry{}, false
	}

	return e, true
}

func (m *MemoryCache) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}

	return m.now().Add(ttl)
}

// Compile-time check.
var _ cache.Store = (*MemoryCache)(nil)
