package ratelimit

import (
	"context"
	"time"
)

// Usage describes a key's requests inside the current window.
type Usage struct {
	// Count includes the request just recorded.
	Count int64
	// Oldest is the timestamp of the earliest request still inside the window.
	Oldest time.Time
}

// ResetAt is when the earliest request leaves the window.
func (u Usage) ResetAt(window time.Duration) time.Time {
	return u.Oldest.Add(window)
}

// Store defines the interface for rate limit data storage.
type Store interface {
	// Record records a request and returns the usage in the current window.
	// It automatically prunes expired entries.
	Record(ctx context.Context, key string, window time.Duration) (Usage, error)
}
