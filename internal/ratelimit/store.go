package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for rate limit data storage.
type Store interface {
	// Record records a hit for key and returns the number of hits in the
	// current window, including this one.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
