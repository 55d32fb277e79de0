// Package redemption validates redemption attempts, records the resulting
// views and triggers earnings attribution.
package redemption

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serroba/paylink/internal/cache"
	"github.com/serroba/paylink/internal/geo"
	"github.com/serroba/paylink/internal/ratelimit"
	"github.com/serroba/paylink/internal/shortener"
	"github.com/serroba/paylink/internal/token"
	"go.uber.org/zap"
)

const (
	// DefaultWindow is how long after issuance a token may be redeemed.
	DefaultWindow = 120 * time.Second

	// NoteOwnerView marks a redemption by the link owner.
	NoteOwnerView = "Owner view"
)

// Config tunes redemption. Window must not exceed the token TTL.
type Config struct {
	Window      time.Duration
	Wait        time.Duration
	EnforceWait bool
}

// DefaultConfig returns the production redemption settings.
func DefaultConfig() Config {
	return Config{
		Window:      DefaultWindow,
		Wait:        token.DefaultWait,
		EnforceWait: true,
	}
}

// Attributor credits earnings for a view.
type Attributor interface {
	Attribute(ctx context.Context, link *shortener.Snapshot, userID int64, amount shortener.Money) error
}

// ViewObserver is notified after a view is persisted.
type ViewObserver interface {
	ViewRecorded(ctx context.Context, link *shortener.Snapshot, view *shortener.View)
}

// Request is a single redemption attempt.
type Request struct {
	Code      shortener.Code
	Token     string
	Password  string
	ClientIP  string
	UserAgent string
	Referer   string
	ViewerID  *int64 // authenticated visitor, if any
}

// Result is returned for a redeemed token.
type Result struct {
	OriginalURL string
	IsGuestLink bool
	Earned      shortener.Money
	Message     string
	View        *shortener.View
}

// Validator runs the redemption pipeline.
type Validator struct {
	links     shortener.Resolver
	cache     cache.Store
	views     shortener.ViewRepository
	limiter   ratelimit.Limiter
	earnings  Attributor
	locator   geo.Locator
	observers []ViewObserver
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger
}

// NewValidator creates a redemption validator. limiter is keyed per client and link.
func NewValidator(
	links shortener.Resolver,
	c cache.Store,
	views shortener.ViewRepository,
	limiter ratelimit.Limiter,
	earnings Attributor,
	locator geo.Locator,
	cfg Config,
	logger *zap.Logger,
) *Validator {
	return &Validator{
		links:    links,
		cache:    c,
		views:    views,
		limiter:  limiter,
		earnings: earnings,
		locator:  locator,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the time source.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now

	return v
}

// WithObserver registers o to be told about every persisted view.
func (v *Validator) WithObserver(o ViewObserver) *Validator {
	v.observers = append(v.observers, o)

	return v
}

// Redeem consumes the token for the request's client and, when every check
// passes, records a valid view and credits the owner. Once the link is
// resolved every outcome persists exactly one view; rejected attempts are
// stored as invalid with the reason as note. The token is gone after any
// attempt that reaches the token check.
func (v *Validator) Redeem(ctx context.Context, req Request) (*Result, error) {
	code := string(req.Code)

	allowed, err := v.limiter.Allow(ctx, cache.RedeemRateKey(req.ClientIP, code))
	if err != nil {
		return nil, fmt.Errorf("redeem %s: %w", code, err)
	}

	if !allowed {
		v.logger.Warn("redemption rate limited",
			zap.String("code", code),
			zap.String("client_ip", req.ClientIP),
		)

		return nil, shortener.ErrTooManyRequests
	}

	link, err := v.links.Resolve(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	now := v.now()

	if err := v.checkLink(link, req, now); err != nil {
		return nil, v.reject(ctx, link, req, now, err)
	}

	if err := v.consumeToken(ctx, req, now); err != nil {
		if !isRejection(err) {
			return nil, err
		}

		return nil, v.reject(ctx, link, req, now, err)
	}

	return v.accept(ctx, link, req, now)
}

func (v *Validator) checkLink(link *shortener.Snapshot, req Request, now time.Time) error {
	if link.Status == shortener.StatusDisabled {
		return shortener.ErrLinkDisabled
	}

	if link.Expired(now) {
		return shortener.ErrLinkExpired
	}

	if !link.HasPassword() {
		return nil
	}

	if req.Password == "" {
		return shortener.ErrPasswordMissing
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(link.Password)) != 1 {
		return shortener.ErrWrongPassword
	}

	return nil
}

// consumeToken takes the client's token out of the cache before inspecting
// it, so a token can only ever be presented once.
func (v *Validator) consumeToken(ctx context.Context, req Request, now time.Time) error {
	fingerprint := token.Fingerprint(req.ClientIP, req.UserAgent)

	record, err := token.Take(ctx, v.cache, string(req.Code), fingerprint)
	if errors.Is(err, cache.ErrMiss) {
		return shortener.ErrInvalidToken
	}

	if err != nil {
		if errors.Is(err, token.ErrEmptyRecord) || errors.Is(err, token.ErrMalformedRecord) {
			v.logger.Warn("discarding undecodable token", zap.String("code", string(req.Code)), zap.Error(err))

			return shortener.ErrInvalidToken
		}

		return fmt.Errorf("redeem %s: %w", req.Code, err)
	}

	if req.Token == "" || subtle.ConstantTimeCompare([]byte(req.Token), []byte(record.Token)) != 1 {
		return shortener.ErrInvalidToken
	}

	if record.IP != "" && record.IP != req.ClientIP {
		return shortener.ErrTokenMismatch
	}

	if record.UserAgent != "" && strings.TrimSpace(record.UserAgent) != strings.TrimSpace(req.UserAgent) {
		return shortener.ErrTokenMismatch
	}

	// Legacy records carry no issuance time and are bounded by their TTL only.
	if !record.HasIssuedAt() {
		return nil
	}

	elapsed := now.Sub(record.IssuedAt)

	if elapsed > v.cfg.Window {
		return shortener.ErrTokenExpired
	}

	if v.cfg.EnforceWait && elapsed < v.cfg.Wait {
		return shortener.ErrTooEarly
	}

	return nil
}

func (v *Validator) accept(ctx context.Context, link *shortener.Snapshot, req Request, now time.Time) (*Result, error) {
	country, err := geo.Lookup(ctx, v.locator, req.ClientIP)
	if err != nil {
		v.logger.Debug("geolocation failed", zap.String("client_ip", req.ClientIP), zap.Error(err))
	}

	seen, err := v.views.HasValidViewSince(ctx, link.ID, req.ClientIP, startOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("redeem %s: check unique view: %w", req.Code, err)
	}

	isUnique := !seen
	ownerView := req.ViewerID != nil && link.OwnedBy(*req.ViewerID)

	var earned shortener.Money
	if isUnique && !link.IsGuest() && !ownerView {
		earned = link.EarnPerClick
	}

	view := v.newView(link, req, now)
	view.Country = country
	view.IsUnique = isUnique
	view.IsValid = true
	view.Earned = earned

	if ownerView {
		view.Note = NoteOwnerView
	}

	if err := v.views.SaveView(ctx, view); err != nil {
		return nil, fmt.Errorf("redeem %s: save view: %w", req.Code, err)
	}

	v.notify(ctx, link, view)

	if earned > 0 {
		// The view row is already durable; a failed credit leaves it
		// uncredited and is left to reconciliation.
		if err := v.earnings.Attribute(ctx, link, *link.OwnerID, earned); err != nil {
			v.logger.Error("earnings attribution failed after view was recorded",
				zap.String("code", string(req.Code)),
				zap.Int64("view_id", view.ID),
				zap.Int64("amount_cents", int64(earned)),
				zap.Error(err),
			)
		}
	}

	return &Result{
		OriginalURL: link.OriginalURL,
		IsGuestLink: link.IsGuest(),
		Earned:      earned,
		Message:     message(link, ownerView, earned),
		View:        view,
	}, nil
}

// reject records an invalid view for cause and returns cause.
func (v *Validator) reject(ctx context.Context, link *shortener.Snapshot, req Request, now time.Time, cause error) error {
	view := v.newView(link, req, now)
	view.Country = geo.Unknown
	view.Note = cause.Error()

	if err := v.views.SaveView(ctx, view); err != nil {
		v.logger.Error("failed to record rejected view",
			zap.String("code", string(req.Code)),
			zap.String("reason", view.Note),
			zap.Error(err),
		)

		return cause
	}

	v.notify(ctx, link, view)

	return cause
}

func (v *Validator) newView(link *shortener.Snapshot, req Request, now time.Time) *shortener.View {
	return &shortener.View{
		LinkID:    link.ID,
		ClientIP:  req.ClientIP,
		UserAgent: req.UserAgent,
		Referer:   req.Referer,
		Device:    Device(req.UserAgent),
		Browser:   Browser(req.UserAgent),
		CreatedAt: now,
	}
}

func (v *Validator) notify(ctx context.Context, link *shortener.Snapshot, view *shortener.View) {
	for _, o := range v.observers {
		o.ViewRecorded(ctx, link, view)
	}
}

func message(link *shortener.Snapshot, ownerView bool, earned shortener.Money) string {
	switch {
	case link.IsGuest():
		return "Guest link viewed (no earnings)."
	case ownerView:
		return "You are the owner of this link. Views are not counted."
	case earned > 0:
		return "Valid view recorded, earnings updated."
	default:
		return "Valid view recorded."
	}
}

// isRejection reports whether err is a client-facing rejection rather than
// an infrastructure failure.
func isRejection(err error) bool {
	var e *shortener.Error

	return errors.As(err, &e)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
