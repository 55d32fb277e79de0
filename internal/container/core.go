package container

import (
	"fmt"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/serroba/paylink/internal/analytics"
	"github.com/serroba/paylink/internal/cache"
	"github.com/serroba/paylink/internal/earnings"
	"github.com/serroba/paylink/internal/geo"
	"github.com/serroba/paylink/internal/ratelimit"
	"github.com/serroba/paylink/internal/redemption"
	"github.com/serroba/paylink/internal/shortener"
	"github.com/serroba/paylink/internal/store"
	"github.com/serroba/paylink/internal/token"
	"go.uber.org/zap"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// CorePackage provides the link service, token issuer and redemption validator.
func CorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		generator, err := nanoid.Standard(opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("code generator: %w", err)
		}

		return shortener.NewService(
			do.MustInvoke[*store.CachedLinkRepository](i),
			do.MustInvoke[*store.CachedStats](i),
			generator,
			shortener.Money(opts.EarnPerClickCents),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*token.Issuer, error) {
		opts := do.MustInvoke[*Options](i)

		cfg := token.DefaultConfig()
		cfg.TTL = seconds(opts.TokenTTLSeconds)
		cfg.Wait = seconds(opts.WaitSeconds)

		return token.NewIssuer(
			do.MustInvoke[*store.CachedLinkRepository](i),
			do.MustInvoke[cache.Store](i),
			ratelimit.NewWindowLimiter(do.MustInvoke[ratelimit.Store](i), int64(opts.IssueLimit), time.Minute),
			cfg,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*earnings.Attributor, error) {
		return earnings.NewAttributor(do.MustInvoke[DurableStore](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (*redemption.Validator, error) {
		opts := do.MustInvoke[*Options](i)

		cfg := redemption.Config{
			Window:      seconds(opts.RedemptionWindowSeconds),
			Wait:        seconds(opts.WaitSeconds),
			EnforceWait: opts.EnforceWait,
		}

		v := redemption.NewValidator(
			do.MustInvoke[*store.CachedLinkRepository](i),
			do.MustInvoke[cache.Store](i),
			do.MustInvoke[DurableStore](i),
			ratelimit.NewWindowLimiter(do.MustInvoke[ratelimit.Store](i), int64(opts.RedeemLimit), time.Minute),
			do.MustInvoke[*earnings.Attributor](i),
			do.MustInvoke[geo.Locator](i),
			cfg,
			do.MustInvoke[*zap.Logger](i),
		)

		return v.WithObserver(do.MustInvoke[*analytics.Publisher](i)), nil
	})
}
