package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/paylink/internal/cache"
	"github.com/serroba/paylink/internal/shortener"
	"go.uber.org/zap"
)

const (
	// DefaultLinkTTL is how long a link snapshot stays cached.
	DefaultLinkTTL = 10 * time.Minute
	// DefaultAliasTTL is how long an alias availability answer is memoized.
	DefaultAliasTTL = 10 * time.Second
)

// CachedLinkRepository wraps a Repository with a read-through snapshot
// cache. Writes go to the store first and then overwrite the cache.
type CachedLinkRepository struct {
	store    shortener.Repository
	cache    cache.Store
	ttl      time.Duration
	aliasTTL time.Duration
	logger   *zap.Logger
}

// NewCachedLinkRepository creates a cached repository decorator.
func NewCachedLinkRepository(
	store shortener.Repository, c cache.Store, logger *zap.Logger,
) *CachedLinkRepository {
	return &CachedLinkRepository{
		store:    store,
		cache:    c,
		ttl:      DefaultLinkTTL,
		aliasTTL: DefaultAliasTTL,
		logger:   logger,
	}
}

// Create stores the link and populates the cache.
func (r *CachedLinkRepository) Create(ctx context.Context, link *shortener.Link) error {
	if err := r.store.Create(ctx, link); err != nil {
		return err
	}

	r.cacheSnapshot(ctx, link.Snapshot())

	// An earlier availability answer for this code is now wrong.
	if err := r.cache.Delete(ctx, cache.AliasCheckKey(string(link.Code))); err != nil {
		r.logger.Warn("failed to evict alias check", zap.String("code", string(link.Code)), zap.Error(err))
	}

	return nil
}

// GetByCode reads the full link from the store. Use Resolve on the hot path.
func (r *CachedLinkRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	return r.store.GetByCode(ctx, code)
}

// Resolve returns the link snapshot, checking the cache first.
func (r *CachedLinkRepository) Resolve(ctx context.Context, code shortener.Code) (*shortener.Snapshot, error) {
	if snapshot, ok := r.getFromCache(ctx, code); ok {
		return snapshot, nil
	}

	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	snapshot := link.Snapshot()
	r.cacheSnapshot(ctx, snapshot)

	return snapshot, nil
}

// Update writes the store and then overwrites the cached snapshot. If the
// overwrite fails the entry is evicted; if that fails too the error is
// returned, since a stale password or URL must not be served.
func (r *CachedLinkRepository) Update(ctx context.Context, link *shortener.Link) error {
	if err := r.store.Update(ctx, link); err != nil {
		return err
	}

	key := cache.LinkKey(string(link.Code))

	payload, err := json.Marshal(link.Snapshot())
	if err == nil {
		err = r.cache.Set(ctx, key, string(payload), r.ttl)
	}

	if err == nil {
		return nil
	}

	r.logger.Warn("failed to overwrite cached link, evicting",
		zap.String("code", string(link.Code)),
		zap.Error(err),
	)

	if err := r.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate cached link %s: %w", link.Code, err)
	}

	return nil
}

// Exists reports whether code is taken. Answers are memoized briefly and
// are not authoritative; Create still detects collisions.
func (r *CachedLinkRepository) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	key := cache.AliasCheckKey(string(code))

	if v, err := r.cache.Get(ctx, key); err == nil {
		return v == "1", nil
	} else if !errors.Is(err, cache.ErrMiss) {
		r.logger.Warn("alias check cache read failed", zap.String("alias", string(code)), zap.Error(err))
	}

	exists, err := r.store.Exists(ctx, code)
	if err != nil {
		return false, err
	}

	v := "0"
	if exists {
		v = "1"
	}

	if err := r.cache.Set(ctx, key, v, r.aliasTTL); err != nil {
		r.logger.Warn("failed to memoize alias check", zap.String("alias", string(code)), zap.Error(err))
	}

	return exists, nil
}

func (r *CachedLinkRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Snapshot, bool) {
	data, err := r.cache.Get(ctx, cache.LinkKey(string(code)))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			r.logger.Warn("link cache read failed", zap.String("code", string(code)), zap.Error(err))
		}

		return nil, false
	}

	var snapshot shortener.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		r.logger.Warn("discarding undecodable cached link", zap.String("code", string(code)), zap.Error(err))

		return nil, false
	}

	return &snapshot, true
}

func (r *CachedLinkRepository) cacheSnapshot(ctx context.Context, snapshot *shortener.Snapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	if err := r.cache.Set(ctx, cache.LinkKey(string(snapshot.Code)), string(payload), r.ttl); err != nil {
		r.logger.Warn("failed to cache link", zap.String("code", string(snapshot.Code)), zap.Error(err))
	}
}

// Compile-time checks.
var (
	_ shortener.Repository = (*CachedLinkRepository)(nil)
	_ shortener.Resolver   = (*CachedLinkRepository)(nil)
)
