package shortener

import (
	"context"
	"time"
)

// Repository is the durable link store.
type Repository interface {
	// Create inserts a new link and assigns its ID.
	// Returns ErrCodeCollision if the code is already taken.
	Create(ctx context.Context, link *Link) error
	GetByCode(ctx context.Context, code Code) (*Link, error)
	// Update persists the editable fields of an existing link.
	Update(ctx context.Context, link *Link) error
	Exists(ctx context.Context, code Code) (bool, error)
}

// Resolver returns the snapshot of a link on the hot path.
type Resolver interface {
	Resolve(ctx context.Context, code Code) (*Snapshot, error)
}

// ViewRepository persists click events.
type ViewRepository interface {
	SaveView(ctx context.Context, view *View) error
	// HasValidViewSince reports whether a valid view exists for the link and IP at or after since.
	HasValidViewSince(ctx context.Context, linkID int64, ip string, since time.Time) (bool, error)
}

// StatsReader aggregates views for reporting.
type StatsReader interface {
	Stats(ctx context.Context, linkID int64) (*Stats, error)
}
