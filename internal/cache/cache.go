// Package cache defines the expiring key-value capability shared by the
// redirect pipeline and the key namespace it writes to.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or has expired.
var ErrMiss = errors.New("cache miss")

// Store is a low-latency expiring key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments key and returns the new value.
	// When the increment creates the key, ttl is applied to it.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Take atomically returns and deletes the value under key.
	Take(ctx context.Context, key string) (string, error)
}
