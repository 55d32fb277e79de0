package shortener

import (
	"strconv"
	"time"
)

// Code represents a short link code.
type Code string

// Status is the moderation state of a link.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDisabled
}

// Money is an amount in cents.
type Money int64

// Float64 returns the amount in whole currency units.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	return strconv.FormatFloat(m.Float64(), 'f', 2, 64)
}

// Link is the durable shortening record.
type Link struct {
	ID           int64
	Code         Code
	OriginalURL  string
	Title        string
	Password     string // empty means no password
	ExpiresAt    *time.Time
	Status       Status
	AdminComment string
	OwnerID      *int64 // nil for guest links
	EarnPerClick Money
	TotalEarned  Money
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsGuest reports whether the link was created without an owner.
func (l *Link) IsGuest() bool {
	return l.OwnerID == nil
}

// Snapshot returns the cacheable projection of the link.
func (l *Link) Snapshot() *Snapshot {
	return &Snapshot{
		ID:           l.ID,
		Code:         l.Code,
		OriginalURL:  l.OriginalURL,
		OwnerID:      l.OwnerID,
		Password:     l.Password,
		ExpiresAt:    l.ExpiresAt,
		EarnPerClick: l.EarnPerClick,
		Status:       l.Status,
	}
}

// Snapshot is the read-optimized projection of a Link kept in the cache.
// TotalEarned is deliberately absent: it is only read from the durable store.
type Snapshot struct {
	ID           int64      `json:"id"`
	Code         Code       `json:"code"`
	OriginalURL  string     `json:"original_url"`
	OwnerID      *int64     `json:"owner_id,omitempty"`
	Password     string     `json:"password,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	EarnPerClick Money      `json:"earn_per_click"`
	Status       Status     `json:"status"`
}

// IsGuest reports whether the link has no owner.
func (s *Snapshot) IsGuest() bool {
	return s.OwnerID == nil
}

// OwnedBy reports whether userID owns the link.
func (s *Snapshot) OwnedBy(userID int64) bool {
	return s.OwnerID != nil && *s.OwnerID == userID
}

// Expired reports whether the link is past its expiry at now.
func (s *Snapshot) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// HasPassword reports whether redemption requires a password.
func (s *Snapshot) HasPassword() bool {
	return s.Password != ""
}

// View is an immutable click event.
type View struct {
	ID        int64
	LinkID    int64
	ClientIP  string
	UserAgent string
	Referer   string
	Country   string
	Device    string
	Browser   string
	IsUnique  bool
	IsValid   bool
	Earned    Money
	Note      string
	CreatedAt time.Time
}

// Stats aggregates the views of a single link.
type Stats struct {
	TotalViews  int64
	UniqueViews int64
	ValidViews  int64
	EarnedTotal Money
}
