package shortener

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when no record matches.
	ErrNotFound = errors.New("url not found")
	// ErrInvalidInput is returned when the submitted URL or title is malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when an owner-scoped operation has no owner.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is matched by *ConflictError.
	ErrConflict = errors.New("url already shortened")
	// ErrSlugTaken is returned by repositories when the slug is already stored.
	ErrSlugTaken = errors.New("slug already taken")
	// ErrDuplicateURL is returned by repositories when the owner already stored the URL.
	ErrDuplicateURL = errors.New("owner already stored this url")
	// ErrSlugExhausted is returned when every allocation attempt collided.
	ErrSlugExhausted = errors.New("could not allocate a unique slug")
)

// ConflictError reports that the owner already has a short URL for the same target.
type ConflictError struct {
	Existing *ShortURL
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: existing slug %q", ErrConflict, e.Existing.Slug)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
