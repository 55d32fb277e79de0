package container

import (
	"context"
	"fmt"

	"github.com/samber/do"
	"github.com/serroba/paylink/internal/cache"
	"github.com/serroba/paylink/internal/earnings"
	"github.com/serroba/paylink/internal/geo"
	"github.com/serroba/paylink/internal/ratelimit"
	"github.com/serroba/paylink/internal/shortener"
	"github.com/serroba/paylink/internal/store"
	"go.uber.org/zap"
)

// DurableStore is the link, view and ledger store behind the cache.
type DurableStore interface {
	shortener.Repository
	shortener.ViewRepository
	shortener.StatsReader
	earnings.Ledger
}

// RepositoryPackage provides the cache, the durable store and the cached link repository.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (cache.Store, error) {
		if conn := do.MustInvoke[*RedisConnection](i); conn != nil {
			return store.NewRedisCache(conn.UniversalClient), nil
		}

		return store.NewMemoryCache(), nil
	})

	do.Provide(i, func(i *do.Injector) (DurableStore, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		conn := do.MustInvoke[*PostgresConnection](i)
		if conn == nil {
			logger.Warn("no database configured, links are kept in memory")

			return store.NewMemoryStore(), nil
		}

		pg := store.NewPostgresStore(conn.Pool)
		if err := pg.Migrate(context.Background()); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}

		return pg, nil
	})

	do.Provide(i, func(i *do.Injector) (*store.CachedLinkRepository, error) {
		return store.NewCachedLinkRepository(
			do.MustInvoke[DurableStore](i),
			do.MustInvoke[cache.Store](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*store.CachedStats, error) {
		return store.NewCachedStats(
			do.MustInvoke[DurableStore](i),
			do.MustInvoke[cache.Store](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// RateLimitPackage provides the counter store shared by every limiter and
// the HTTP policy limiter.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		// Counters must be shared across instances, so Redis wins when present.
		if conn := do.MustInvoke[*RedisConnection](i); conn != nil {
			return store.NewRateLimitCacheStore(do.MustInvoke[cache.Store](i)), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})

	do.Provide(i, func(_ *do.Injector) (ratelimit.ScopeResolver, error) {
		return ratelimit.NewOperationScopeResolver(), nil
	})
}

// GeoPackage provides the country locator.
func GeoPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (geo.Locator, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.GeoIPPath == "" {
			return geo.Static(geo.Unknown), nil
		}

		return geo.Open(opts.GeoIPPath)
	})
}
