package store

import (
	"context"

	"github.com/serroba/paylink/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	n.logger.Info("link created event received",
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.Bool("guest", event.OwnerID == nil),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveViewRecorded(_ context.Context, event *analytics.ViewRecordedEvent) error {
	n.logger.Info("view recorded event received",
		zap.String("code", event.Code),
		zap.Int64("viewId", event.ViewID),
		zap.Bool("valid", event.IsValid),
		zap.Bool("unique", event.IsUnique),
		zap.Int64("earnedCents", event.Earned),
		zap.String("country", event.Country),
		zap.String("note", event.Note),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
