package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/slugly/internal/ratelimit"
)

// RegisterRoutes registers all URL shortener routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// Write limits: one burst slot every five seconds plus an hourly cap.
	huma.Register(api, huma.Operation{
		OperationID: "create-short-url",
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short URL",
		Description: "Creates a short URL whose slug is the base62 encoding of its identifier.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusBadRequest, http.StatusConflict, http.StatusTooManyRequests},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: 5 * time.Second, Max: 1},
					{Window: time.Hour, Max: 100},
				},
			},
		},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "list-urls",
		Method:      http.MethodGet,
		Path:        "/urls",
		Summary:     "List my short URLs",
		Description: "Lists the caller's short URLs, newest first.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusUnauthorized},
	}, urlHandler.ListURLs)

	huma.Register(api, huma.Operation{
		OperationID: "lookup-url",
		Method:      http.MethodGet,
		Path:        "/urls/{id}",
		Summary:     "Look up short URL by id",
		Description: "Returns metadata for one of the caller's short URLs without counting a visit.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, urlHandler.LookupURL)

	huma.Register(api, huma.Operation{
		OperationID: "not-found",
		Method:      http.MethodGet,
		Path:        "/not-found",
		Summary:     "Fallback page",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect},
			MetadataPublic:        true,
		},
	}, urlHandler.NotFound)

	// Relaxed limits for the high-traffic redirect path.
	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{slug}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL for the slug, or to the fallback page.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect},
			MetadataPublic:        true,
		},
	}, urlHandler.RedirectToURL)
}
