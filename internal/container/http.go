package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/paylink/internal/analytics"
	"github.com/serroba/paylink/internal/handlers"
	"github.com/serroba/paylink/internal/health"
	"github.com/serroba/paylink/internal/middleware"
	"github.com/serroba/paylink/internal/ratelimit"
	"github.com/serroba/paylink/internal/redemption"
	"github.com/serroba/paylink/internal/shortener"
	"github.com/serroba/paylink/internal/token"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		api := humachi.New(do.MustInvoke[*chi.Mux](i), huma.DefaultConfig("Paylink", "1.0.0"))

		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.Authenticate(api, []byte(opts.JWTSecret), logger))
		api.UseMiddleware(middleware.PolicyRateLimiter(
			api,
			do.MustInvoke[*ratelimit.PolicyLimiter](i),
			do.MustInvoke[ratelimit.ScopeResolver](i),
			logger,
		))

		handlers.RegisterRoutes(api, handlers.NewLinkHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[*token.Issuer](i),
			do.MustInvoke[*redemption.Validator](i),
			do.MustInvoke[*analytics.Publisher](i),
			opts.PublicBaseURL(),
			logger,
		))

		health.RegisterRoutes(api, newHealthHandler(i, logger))

		return api, nil
	})
}

func newHealthHandler(i *do.Injector, logger *zap.Logger) *health.Handler {
	var redisChecker, postgresChecker health.Checker

	if conn := do.MustInvoke[*RedisConnection](i); conn != nil {
		redisChecker = health.NewRedisChecker(conn.UniversalClient)
	}

	if conn := do.MustInvoke[*PostgresConnection](i); conn != nil {
		postgresChecker = health.NewPostgresChecker(conn.Pool)
	}

	return health.NewHandler(redisChecker, postgresChecker, logger)
}
