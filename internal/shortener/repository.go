package shortener

import "context"

// Repository defines the storage operations the shortener needs.
type Repository interface {
	// NextID reserves a fresh identifier before any row exists for it.
	// Reserved identifiers that are never inserted are simply skipped.
	NextID(ctx context.Context) (ID, error)

	// Create inserts a fully formed record. It returns ErrSlugTaken when the
	// slug exists and ErrDuplicateURL when the owner already stored the URL.
	Create(ctx context.Context, shortURL *ShortURL) error

	// GetBySlug returns the record with exactly this slug.
	GetBySlug(ctx context.Context, slug Slug) (*ShortURL, error)

	// GetByID returns the record with this identifier.
	GetByID(ctx context.Context, id ID) (*ShortURL, error)

	// FindByOwnerURL returns the owner's record for originalURL.
	FindByOwnerURL(ctx context.Context, owner OwnerID, originalURL string) (*ShortURL, error)

	// IncrementVisits atomically adds one visit to the record with this slug
	// and returns the updated record. Expired records are not counted and
	// yield ErrNotFound.
	IncrementVisits(ctx context.Context, slug Slug) (*ShortURL, error)

	// ListByOwner returns the owner's records, newest first, ties broken by id descending.
	ListByOwner(ctx context.Context, owner OwnerID) ([]*ShortURL, error)
}
