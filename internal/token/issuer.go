package token

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/paylink/internal/cache"
	"github.com/serroba/paylink/internal/ratelimit"
	"github.com/serroba/paylink/internal/shortener"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long an issued token stays in the cache.
	DefaultTTL = 180 * time.Second
	// DefaultWait is the advisory interstitial wait returned to clients.
	DefaultWait = 10 * time.Second
)

// DefaultAds is the placeholder ad payload shown on the interstitial.
var DefaultAds = []string{
	"https://example.com/ads1",
	"https://example.com/ads2",
}

// Config tunes token issuance.
type Config struct {
	TTL  time.Duration
	Wait time.Duration
	Ads  []string
}

// DefaultConfig returns the production issuance settings.
func DefaultConfig() Config {
	return Config{
		TTL:  DefaultTTL,
		Wait: DefaultWait,
		Ads:  DefaultAds,
	}
}

// Ticket is what a visitor receives on the interstitial page.
type Ticket struct {
	Token            string
	Wait             time.Duration
	Ads              []string
	PasswordRequired bool
	Message          string
	Link             *shortener.Snapshot
}

// Issuer hands out redemption tokens.
type Issuer struct {
	links   shortener.Resolver
	cache   cache.Store
	limiter ratelimit.Limiter
	cfg     Config
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger
}

// NewIssuer creates a token issuer. limiter is keyed per client and link.
func NewIssuer(
	links shortener.Resolver,
	c cache.Store,
	limiter ratelimit.Limiter,
	cfg Config,
	logger *zap.Logger,
) *Issuer {
	return &Issuer{
		links:   links,
		cache:   c,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// WithClock overrides the time source.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now

	return i
}

// Issue resolves the link, applies the per-client limit and stores a fresh
// token for the client fingerprint. A re-issue replaces the previous token.
func (i *Issuer) Issue(ctx context.Context, code shortener.Code, clientIP, userAgent string) (*Ticket, error) {
	link, err := i.links.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	now := i.now()

	if link.Expired(now) {
		return nil, shortener.ErrLinkExpired
	}

	if link.Status == shortener.StatusDisabled {
		return nil, shortener.ErrLinkDisabled
	}

	allowed, err := i.limiter.Allow(ctx, cache.RateKey(clientIP, string(code)))
	if err != nil {
		return nil, fmt.Errorf("issue token for %s: %w", code, err)
	}

	if !allowed {
		i.logger.Warn("token issuance rate limited",
			zap.String("code", string(code)),
			zap.String("client_ip", clientIP),
		)

		return nil, shortener.ErrTooManyRequests
	}

	record := Record{
		Token:     i.newID(),
		Code:      string(code),
		IssuedAt:  now,
		IP:        clientIP,
		UserAgent: userAgent,
	}

	payload, err := record.Encode()
	if err != nil {
		return nil, err
	}

	key := cache.TokenKey(string(code), Fingerprint(clientIP, userAgent))
	if err := i.cache.Set(ctx, key, payload, i.cfg.TTL); err != nil {
		return nil, fmt.Errorf("store token for %s: %w", code, err)
	}

	if _, err := i.cache.Incr(ctx, cache.PreviewCountKey(string(code)), 0); err != nil {
		i.logger.Error("failed to count preview", zap.String("code", string(code)), zap.Error(err))
	}

	waitSeconds := int(i.cfg.Wait / time.Second)

	return &Ticket{
		Token:            record.Token,
		Wait:             i.cfg.Wait,
		Ads:              i.cfg.Ads,
		PasswordRequired: link.HasPassword(),
		Message:          fmt.Sprintf("Please wait %d seconds before continuing.", waitSeconds),
		Link:             link,
	}, nil
}
