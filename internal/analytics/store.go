package analytics

import "context"

// Store defines the interface for persisting analytics events.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveViewRecorded(ctx context.Context, event *ViewRecordedEvent) error
}
