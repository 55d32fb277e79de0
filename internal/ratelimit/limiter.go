package ratelimit

import (
	"context"
	"time"
)

// Limiter defines the interface for rate limiting.
type Limiter interface {
	// Allow records a hit for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// WindowLimiter allows at most limit hits per key within a window. Whether
// the window slides or resets is decided by the Store.
type WindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewWindowLimiter creates a new windowed rate limiter.
func NewWindowLimiter(store Store, limit int64, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Record(ctx, key, l.window)
	if err != nil {
		return false, err
	}

	return count <= l.limit, nil
}

// Unlimited is a Limiter that allows everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) {
	return true, nil
}
