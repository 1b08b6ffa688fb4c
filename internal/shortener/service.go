package shortener

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/serroba/slugly/internal/base62"
	"go.uber.org/zap"
)

const allocateAttempts = 8

// ShortenRequest is the validated-at-the-boundary input to Shorten.
type ShortenRequest struct {
	URL   string
	Title string
	Owner OwnerID
}

// Outcome classifies a resolution.
type Outcome int

const (
	// OutcomeNotFound means the caller must redirect to the fallback.
	OutcomeNotFound Outcome = iota
	// OutcomeRedirect means Location holds the destination.
	OutcomeRedirect
)

// Redirect is the result of resolving a slug.
type Redirect struct {
	Outcome  Outcome
	Location string
	ShortURL *ShortURL // nil unless Outcome is OutcomeRedirect
}

// Service implements slug assignment, redirect resolution and listing.
type Service struct {
	store       Repository
	strategy    Strategy
	fallbackURL string
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a shortener service.
func NewService(store Repository, strategy Strategy, fallbackURL string, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		strategy:    strategy,
		fallbackURL: fallbackURL,
		logger:      logger,
		now:         time.Now,
	}
}

// FallbackURL is where unresolvable slugs are sent.
func (s *Service) FallbackURL() string {
	return s.fallbackURL
}

// Shorten validates the request and persists a new ShortURL.
// When the owner already shortened the same URL it returns a *ConflictError
// carrying the existing record.
func (s *Service) Shorten(ctx context.Context, req ShortenRequest) (*ShortURL, error) {
	originalURL, err := ValidateURL(req.URL)
	if err != nil {
		return nil, err
	}

	title, err := ValidateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	if req.Owner != "" {
		existing, err := s.store.FindByOwnerURL(ctx, req.Owner, originalURL)
		if err == nil {
			return nil, &ConflictError{Existing: existing}
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("finding owner url: %w", err)
		}
	}

	for attempt := 1; attempt <= allocateAttempts; attempt++ {
		id, err := s.store.NextID(ctx)
		if err != nil {
			return nil, fmt.Errorf("reserving id: %w", err)
		}

		slug := s.strategy.Slug(id)
		if Reserved(slug) {
			s.logger.Info("skipping reserved slug",
				zap.String("slug", string(slug)),
				zap.Int64("id", int64(id)),
			)

			continue
		}

		shortURL := &ShortURL{
			ID:          id,
			Slug:        slug,
			OriginalURL: originalURL,
			OwnerID:     req.Owner,
			Title:       title,
			CreatedAt:   s.now().UTC(),
		}

		err = s.store.Create(ctx, shortURL)

		switch {
		case err == nil:
			return shortURL, nil
		case errors.Is(err, ErrSlugTaken):
			s.logger.Warn("slug collision, retrying",
				zap.String("slug", string(shortURL.Slug)),
				zap.Int64("id", int64(id)),
				zap.Int("attempt", attempt),
			)
		case errors.Is(err, ErrDuplicateURL):
			// A concurrent request for the same owner and URL won the race.
			existing, findErr := s.store.FindByOwnerURL(ctx, req.Owner, originalURL)
			if findErr != nil {
				return nil, fmt.Errorf("finding owner url after duplicate: %w", findErr)
			}

			return nil, &ConflictError{Existing: existing}
		default:
			return nil, fmt.Errorf("creating short url: %w", err)
		}
	}

	return nil, ErrSlugExhausted
}

// Resolve looks up slug, counts the visit and returns where to send the caller.
// It never fails: unknown slugs and storage faults both yield OutcomeNotFound.
func (s *Service) Resolve(ctx context.Context, slug string) Redirect {
	notFound := Redirect{Outcome: OutcomeNotFound, Location: s.fallbackURL}

	if !ValidSlug(slug) {
		return notFound
	}

	shortURL, err := s.store.IncrementVisits(ctx, Slug(slug))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("resolving slug failed",
				zap.String("slug", slug),
				zap.Error(err),
			)
		}

		return notFound
	}

	if shortURL.Expired(s.now()) {
		return notFound
	}

	return Redirect{
		Outcome:  OutcomeRedirect,
		Location: WithScheme(shortURL.OriginalURL),
		ShortURL: shortURL,
	}
}

// ResolveID decodes a base62 identifier and loads the record by id.
// It is a separate path from Resolve: legacy random slugs decode to unrelated ids.
// Visits are not counted.
func (s *Service) ResolveID(ctx context.Context, encodedID string) (*ShortURL, error) {
	n, err := base62.Decode(encodedID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if n == 0 || n > math.MaxInt64 {
		return nil, ErrNotFound
	}

	return s.store.GetByID(ctx, ID(n))
}

// List returns the owner's short URLs, newest first.
func (s *Service) List(ctx context.Context, owner OwnerID) ([]*ShortURL, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}

	urls, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing urls: %w", err)
	}

	return urls, nil
}
