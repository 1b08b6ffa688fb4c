package shortener

import "time"

// ID is the storage-assigned identifier of a ShortURL.
type ID int64

// Slug is the public path segment that resolves to a ShortURL.
type Slug string

// OwnerID identifies the authenticated user that created a ShortURL.
// The zero value means anonymous.
type OwnerID string

// ShortURL represents a shortened URL entity.
type ShortURL struct {
	ID          ID
	Slug        Slug
	OriginalURL string
	OwnerID     OwnerID // empty for anonymous submissions
	Title       string
	VisitCount  int64
	CreatedAt   time.Time
	ExpiresAt   *time.Time
}

// Expired reports whether the record has an expiry in the past.
func (s *ShortURL) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}
