package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/paylink/internal/messaging"
	"github.com/serroba/paylink/internal/shortener"
	"go.uber.org/zap"
)

// Publisher emits analytics events. Publishing is best effort: failures
// are logged and never reach the request path.
type Publisher struct {
	linkCreated  func(context.Context, *LinkCreatedEvent)
	viewRecorded func(context.Context, *ViewRecordedEvent)
}

// NewPublisher creates an analytics publisher on top of publisher.
func NewPublisher(publisher message.Publisher, logger *zap.Logger) *Publisher {
	return &Publisher{
		linkCreated: messaging.BestEffort(
			messaging.NewPublishFunc[LinkCreatedEvent](publisher, TopicLinkCreated), TopicLinkCreated, logger,
		),
		viewRecorded: messaging.BestEffort(
			messaging.NewPublishFunc[ViewRecordedEvent](publisher, TopicViewRecorded), TopicViewRecorded, logger,
		),
	}
}

// LinkCreated publishes a link.created event.
func (p *Publisher) LinkCreated(ctx context.Context, link *shortener.Link, clientIP, userAgent string) {
	p.linkCreated(ctx, &LinkCreatedEvent{
		LinkID:       link.ID,
		Code:         string(link.Code),
		OriginalURL:  link.OriginalURL,
		OwnerID:      link.OwnerID,
		EarnPerClick: int64(link.EarnPerClick),
		CreatedAt:    link.CreatedAt,
		ClientIP:     clientIP,
		UserAgent:    userAgent,
	})
}

// ViewRecorded publishes a view.recorded event.
func (p *Publisher) ViewRecorded(ctx context.Context, link *shortener.Snapshot, view *shortener.View) {
	p.viewRecorded(ctx, &ViewRecordedEvent{
		ViewID:    view.ID,
		LinkID:    view.LinkID,
		Code:      string(link.Code),
		ClientIP:  view.ClientIP,
		Country:   view.Country,
		Device:    view.Device,
		Browser:   view.Browser,
		Referer:   view.Referer,
		IsUnique:  view.IsUnique,
		IsValid:   view.IsValid,
		Earned:    int64(view.Earned),
		Note:      view.Note,
		CreatedAt: view.CreatedAt,
	})
}
