package analytics

import "context"

// Store is where the consumer process writes events.
// SaveURLAccessed appends one row to the visit audit log.
type Store interface {
	SaveURLCreated(ctx context.Context, event *URLCreatedEvent) error
	SaveURLAccessed(ctx context.Context, event *URLAccessedEvent) error
}
