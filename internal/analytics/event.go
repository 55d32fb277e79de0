package analytics

import "time"

// Topics.
const (
	TopicLinkCreated  = "link.created"
	TopicViewRecorded = "view.recorded"
)

// LinkCreatedEvent is emitted when a short link is created.
type LinkCreatedEvent struct {
	LinkID       int64     `json:"linkId"`
	Code         string    `json:"code"`
	OriginalURL  string    `json:"originalUrl"`
	OwnerID      *int64    `json:"ownerId,omitempty"`
	EarnPerClick int64     `json:"earnPerClickCents"`
	CreatedAt    time.Time `json:"createdAt"`
	ClientIP     string    `json:"clientIp"`
	UserAgent    string    `json:"userAgent"`
}

// ViewRecordedEvent is emitted for every persisted view, valid or not.
type ViewRecordedEvent struct {
	ViewID    int64     `json:"viewId"`
	LinkID    int64     `json:"linkId"`
	Code      string    `json:"code"`
	ClientIP  string    `json:"clientIp"`
	Country   string    `json:"country"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
	Referer   string    `json:"referer,omitempty"`
	IsUnique  bool      `json:"isUnique"`
	IsValid   bool      `json:"isValid"`
	Earned    int64     `json:"earnedCents"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
