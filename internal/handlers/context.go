package handlers

import (
	"context"

	"github.com/serroba/slugly/internal/shortener"
)

// MetadataPublic marks operations that ignore bad credentials and serve the
// caller anonymously instead of answering 401.
const MetadataPublic = "public"

type (
	requestMetaKey struct{}
	ownerKey       struct{}
)

// RequestMeta holds HTTP request metadata for analytics.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// ContextWithOwner marks the request as authenticated as owner.
func ContextWithOwner(ctx context.Context, owner shortener.OwnerID) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the authenticated owner, or "" for anonymous callers.
func OwnerFromContext(ctx context.Context) shortener.OwnerID {
	if v, ok := ctx.Value(ownerKey{}).(shortener.OwnerID); ok {
		return v
	}

	return ""
}
