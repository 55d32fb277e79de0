package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/serroba/paylink/internal/cache"
	"github.com/serroba/paylink/internal/shortener"
	"go.uber.org/zap"
)

// DefaultStatsTTL is how long a stats report is memoized.
const DefaultStatsTTL = time.Minute

type cachedStats struct {
	TotalViews  int64 `json:"total_views"`
	UniqueViews int64 `json:"unique_views"`
	ValidViews  int64 `json:"valid_views"`
	EarnedTotal int64 `json:"earned_total"`
}

// CachedStats memoizes stats reports.
type CachedStats struct {
	reader shortener.StatsReader
	cache  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStats creates a memoizing stats reader.
func NewCachedStats(reader shortener.StatsReader, c cache.Store, logger *zap.Logger) *CachedStats {
	return &CachedStats{
		reader: reader,
		cache:  c,
		ttl:    DefaultStatsTTL,
		logger: logger,
	}
}

// Stats returns the memoized report for linkID, computing and storing it on a
// miss. An unreadable memo counts as a miss, and failing to store one only
// logs.
func (s *CachedStats) Stats(ctx context.Context, linkID int64) (*shortener.Stats, error) {
	key := cache.StatsKey(linkID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var c cachedStats
		if err := json.Unmarshal([]byte(data), &c); err == nil {
			return &shortener.Stats{
				TotalViews:  c.TotalViews,
				UniqueViews: c.UniqueViews,
				ValidViews:  c.ValidViews,
				EarnedTotal: shortener.Money(c.EarnedTotal),
			}, nil
		}
	}

	stats, err := s.reader.Stats(ctx, linkID)
	if err != nil {
		return nil, err
	}

	s.memoize(ctx, key, linkID, stats)

	return stats, nil
}

func (s *CachedStats) memoize(ctx context.Context, key string, linkID int64, stats *shortener.Stats) {
	payload, err := json.Marshal(cachedStats{
		TotalViews:  stats.TotalViews,
		UniqueViews: stats.UniqueViews,
		ValidViews:  stats.ValidViews,
		EarnedTotal: int64(stats.EarnedTotal),
	})
	if err != nil {
		s.logger.Warn("failed to encode stats", zap.Int64("link_id", linkID), zap.Error(err))

		return
	}

	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
		s.logger.Warn("failed to memoize stats", zap.Int64("link_id", linkID), zap.Error(err))
	}
}

// Compile-time check.
var _ shortener.StatsReader = (*CachedStats)(nil)
