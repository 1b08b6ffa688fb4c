package analytics

import "time"

const (
	TopicURLCreated  = "url.created"
	TopicURLAccessed = "url.accessed"
)

// URLCreatedEvent represents an event emitted when a URL is shortened.
type URLCreatedEvent struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	OriginalURL string    `json:"originalUrl"`
	OwnerID     string    `json:"ownerId,omitempty"`
	Scheme      string    `json:"scheme"`
	CreatedAt   time.Time `json:"createdAt"`
	VisitorHash string    `json:"visitorHash"`
}

// URLAccessedEvent is one row of the visit audit log.
type URLAccessedEvent struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	AccessedAt  time.Time `json:"accessedAt"`
	VisitorHash string    `json:"visitorHash"`
	UserAgent   string    `json:"userAgent"`
	Referrer    string    `json:"referrer,omitempty"`
}
