package shortener

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
)

const (
	maxURLLength   = 2048
	maxTitleLength = 255
)

// MaxSlugLength bounds stored slugs under either scheme.
const MaxSlugLength = 32

// ValidateURL checks that rawURL is a well-formed http(s) URL and returns it trimmed.
// A missing scheme is accepted; the stored value keeps the caller's form.
func ValidateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	if len(trimmed) > maxURLLength {
		return "", fmt.Errorf("%w: url exceeds %d characters", ErrInvalidInput, maxURLLength)
	}

	if strings.IndexFunc(trimmed, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) != -1 {
		return "", fmt.Errorf("%w: url contains whitespace", ErrInvalidInput)
	}

	u, err := url.Parse(WithScheme(trimmed))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidInput, u.Scheme)
	}

	if !validHost(u.Hostname()) {
		return "", fmt.Errorf("%w: invalid host %q", ErrInvalidInput, u.Host)
	}

	return trimmed, nil
}

func validHost(host string) bool {
	if host == "" {
		return false
	}

	if strings.EqualFold(host, "localhost") || net.ParseIP(host) != nil {
		return true
	}

	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}

	for _, label := range strings.Split(host, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}

	return true
}

// WithScheme prepends https:// to URLs stored without a scheme.
func WithScheme(rawURL string) string {
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rawURL
	}

	if strings.Contains(rawURL, "://") {
		return rawURL
	}

	return "https://" + strings.TrimPrefix(rawURL, "//")
}

// ValidateTitle checks the optional display label.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if len(title) > maxTitleLength {
		return "", fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, maxTitleLength)
	}

	return title, nil
}

// reservedSlugs are first path segments served by fixed routes. The router
// matches them before the slug route, so a short URL using one would never redirect.
var reservedSlugs = map[Slug]struct{}{
	"docs":      {},
	"health":    {},
	"not-found": {},
	"openapi":   {},
	"schemas":   {},
	"shorten":   {},
	"urls":      {},
}

// Reserved reports whether slug collides with a fixed route.
func Reserved(slug Slug) bool {
	if _, ok := reservedSlugs[slug]; ok {
		return true
	}

	return strings.HasPrefix(string(slug), "openapi")
}

// ValidSlug reports whether s could be a stored slug under either scheme.
// Identity slugs use the base62 alphabet; legacy tokens also use '_' and '-'.
func ValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLength {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c == '_', c == '-':
		default:
			return false
		}
	}

	return true
}
