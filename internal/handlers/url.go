package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/slugly/internal/analytics"
	"github.com/serroba/slugly/internal/messaging"
	"github.com/serroba/slugly/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service            *shortener.Service
	baseURL            string
	scheme             string
	publishURLCreated  messaging.Publish[analytics.URLCreatedEvent]
	publishURLAccessed messaging.Publish[analytics.URLAccessedEvent]
	logger             *zap.Logger
}

// NewURLHandler creates a new URL handler.
// scheme names the slug scheme in created events.
func NewURLHandler(
	service *shortener.Service,
	baseURL string,
	scheme string,
	publishURLCreated messaging.Publish[analytics.URLCreatedEvent],
	publishURLAccessed messaging.Publish[analytics.URLAccessedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:            service,
		baseURL:            baseURL,
		scheme:             scheme,
		publishURLCreated:  publishURLCreated,
		publishURLAccessed: publishURLAccessed,
		logger:             logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortURL, err := h.service.Shorten(ctx, shortener.ShortenRequest{
		URL:   req.Body.URL,
		Title: req.Body.Title,
		Owner: OwnerFromContext(ctx),
	})
	if err != nil {
		var conflict *shortener.ConflictError

		switch {
		case errors.Is(err, shortener.ErrInvalidInput):
			return nil, huma.Error400BadRequest(err.Error())
		case errors.As(err, &conflict):
			return nil, &ConflictError{
				Message:  "url already shortened",
				ShortURL: h.shortURL(conflict.Existing.Slug),
			}
		default:
			h.logger.Error("failed to shorten url", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to save url")
		}
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLCreatedEvent{
		ID:          int64(shortURL.ID),
		Slug:        string(shortURL.Slug),
		OriginalURL: shortURL.OriginalURL,
		OwnerID:     string(shortURL.OwnerID),
		Scheme:      h.scheme,
		CreatedAt:   shortURL.CreatedAt,
		VisitorHash: analytics.VisitorHash(meta.ClientIP, meta.UserAgent),
	}

	if err := h.publishURLCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("slug", event.Slug),
			zap.Error(err),
		)
	}

	full := h.shortURL(shortURL.Slug)

	resp := &CreateShortURLResponse{}
	resp.Headers.Location = full
	resp.Body.ID = int64(shortURL.ID)
	resp.Body.Slug = string(shortURL.Slug)
	resp.Body.ShortURL = full
	resp.Body.OriginalURL = shortURL.OriginalURL

	return resp, nil
}

// RedirectToURL always answers 302; unknown slugs go to the fallback URL.
func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	redirect := h.service.Resolve(ctx, req.Slug)

	if redirect.Outcome == shortener.OutcomeRedirect {
		meta := RequestMetaFromContext(ctx)
		event := &analytics.URLAccessedEvent{
			ID:          int64(redirect.ShortURL.ID),
			Slug:        string(redirect.ShortURL.Slug),
			AccessedAt:  time.Now().UTC(),
			VisitorHash: analytics.VisitorHash(meta.ClientIP, meta.UserAgent),
			UserAgent:   meta.UserAgent,
			Referrer:    meta.Referrer,
		}

		if err := h.publishURLAccessed(ctx, event); err != nil {
			h.logger.Error("failed to publish access event",
				zap.String("slug", event.Slug),
				zap.Error(err),
			)
		}
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = redirect.Location
	resp.Headers.CacheControl = "no-store"

	return resp, nil
}

func (h *URLHandler) ListURLs(ctx context.Context, _ *struct{}) (*ListURLsResponse, error) {
	urls, err := h.service.List(ctx, OwnerFromContext(ctx))
	if err != nil {
		if errors.Is(err, shortener.ErrUnauthorized) {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		h.logger.Error("failed to list urls", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list urls")
	}

	resp := &ListURLsResponse{}
	resp.Body.URLs = make([]URLItem, 0, len(urls))

	for _, u := range urls {
		resp.Body.URLs = append(resp.Body.URLs, h.item(u))
	}

	return resp, nil
}

// LookupURL returns metadata for one of the caller's URLs by encoded id.
// Other owners' URLs are reported as not found.
func (h *URLHandler) LookupURL(ctx context.Context, req *LookupRequest) (*LookupResponse, error) {
	owner := OwnerFromContext(ctx)
	if owner == "" {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	shortURL, err := h.service.ResolveID(ctx, req.ID)

	switch {
	case errors.Is(err, shortener.ErrInvalidInput):
		return nil, huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return nil, huma.Error404NotFound("short url not found")
	case err != nil:
		h.logger.Error("failed to look up url", zap.String("id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	if shortURL.OwnerID != owner {
		return nil, huma.Error404NotFound("short url not found")
	}

	return &LookupResponse{Body: h.item(shortURL)}, nil
}

func (h *URLHandler) NotFound(_ context.Context, _ *struct{}) (*NotFoundResponse, error) {
	resp := &NotFoundResponse{Status: http.StatusNotFound}
	resp.Body.Error = "short url not found"

	return resp, nil
}

func (h *URLHandler) shortURL(slug shortener.Slug) string {
	return h.baseURL + "/" + string(slug)
}

func (h *URLHandler) item(u *shortener.ShortURL) URLItem {
	return URLItem{
		ID:          int64(u.ID),
		Slug:        string(u.Slug),
		ShortURL:    h.shortURL(u.Slug),
		OriginalURL: u.OriginalURL,
		Title:       u.Title,
		VisitCount:  u.VisitCount,
		CreatedAt:   u.CreatedAt,
	}
}
