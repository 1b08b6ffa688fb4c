package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL   string `doc:"The URL to shorten"      example:"https://example.com/very/long/path" json:"url"             required:"false"`
		Title string `doc:"Optional display title" example:"Launch notes"                       json:"title,omitempty"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		ID          int64  `doc:"Numeric identifier"  example:"125"                                json:"id"`
		Slug        string `doc:"The short slug"      example:"21"                                 json:"slug"`
		ShortURL    string `doc:"The full short URL"  example:"http://localhost:8888/21"           json:"shortUrl"`
		OriginalURL string `doc:"The original URL"    example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// ConflictError is returned when the owner already shortened the URL.
// It is written as the response body.
type ConflictError struct {
	Message  string `json:"error"`
	ShortURL string `json:"shortUrl"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.ShortURL)
}

// GetStatus implements huma.StatusError.
func (e *ConflictError) GetStatus() int {
	return http.StatusConflict
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Slug string `doc:"The short slug" example:"21" path:"slug"`
}

// RedirectResponse sends the caller to the original URL or the fallback page.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location     string `header:"Location"`
		CacheControl string `header:"Cache-Control"`
	}
}

// URLItem is one entry of the owner's listing.
type URLItem struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	ShortURL    string    `json:"shortUrl"`
	OriginalURL string    `json:"originalUrl"`
	Title       string    `json:"title,omitempty"`
	VisitCount  int64     `json:"visitCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListURLsResponse lists the caller's short URLs, newest first.
type ListURLsResponse struct {
	Body struct {
		URLs []URLItem `json:"urls"`
	}
}

// LookupRequest addresses one of the caller's short URLs by its base62 encoded id.
type LookupRequest struct {
	ID string `doc:"Base62 encoded identifier" example:"21" path:"id"`
}

// LookupResponse returns a short URL's metadata without counting a visit.
type LookupResponse struct {
	Body URLItem
}

// NotFoundResponse is served at the fallback location.
type NotFoundResponse struct {
	Status int
	Body   struct {
		Error string `json:"error"`
	}
}
