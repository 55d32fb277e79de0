package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/paylink/internal/ratelimit"
	"github.com/serroba/paylink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyBuilder(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().
		AddLimit(ratelimit.ScopeRead, 5, time.Minute).
		AddLimit(ratelimit.ScopeRead, 50, time.Hour).
		AddLimit(ratelimit.ScopeWrite, 2, time.Minute).
		Build()

	assert.Equal(t, []ratelimit.LimitConfig{
		{Window: time.Minute, Max: 5},
		{Window: time.Hour, Max: 50},
	}, policy.Limits[ratelimit.ScopeRead])
	assert.Len(t, policy.Limits[ratelimit.ScopeWrite], 1)
	assert.Empty(t, policy.Limits[ratelimit.ScopeAdmin])
}

func TestDefaultPolicy(t *testing.T) {
	policy := ratelimit.DefaultPolicy()

	for _, scope := range []ratelimit.Scope{
		ratelimit.ScopeGlobal, ratelimit.ScopeRead, ratelimit.ScopeWrite, ratelimit.ScopeRedirect, ratelimit.ScopeAdmin,
	} {
		assert.NotEmpty(t, policy.Limits[scope], "scope %s should have a limit", scope)
	}
}

func TestPolicyLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the first exceeded scope", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeGlobal, 10, time.Minute).
			AddLimit(ratelimit.ScopeWrite, 1, time.Minute).
			Build()
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)
		scopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

		allowed, exceeded, err := limiter.Allow(ctx, "client", scopes)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Nil(t, exceeded)

		allowed, exceeded, err = limiter.Allow(ctx, "client", scopes)
		require.NoError(t, err)
		assert.False(t, allowed)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeWrite, exceeded.Scope)
		assert.Equal(t, int64(2), exceeded.Count)
	})

	t.Run("ignores scopes without limits", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), ratelimit.NewPolicyBuilder().Build())

		for range 5 {
			allowed, _, err := limiter.Allow(ctx, "client", []ratelimit.Scope{ratelimit.ScopeAdmin})
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})
}
