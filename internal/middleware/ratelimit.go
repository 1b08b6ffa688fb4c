package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/slugly/internal/handlers"
	"github.com/serroba/slugly/internal/ratelimit"
	"go.uber.org/zap"
)

var errMissingOperation = errors.New("missing operation in context")

// clientKey identifies the caller for rate limiting: the owner when
// authenticated, otherwise a hash of IP and User-Agent.
func clientKey(ctx huma.Context) string {
	if owner := handlers.OwnerFromContext(ctx.Context()); owner != "" {
		return "owner:" + string(owner)
	}

	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

// PolicyRateLimiter returns a Huma middleware that applies policy-based rate limiting.
// It uses a ScopeResolver to determine which scopes apply to each request,
// then checks all applicable limits from the policy.
//
// Per-endpoint configuration can be provided via operation metadata using
// ratelimit.MetadataKey. This allows endpoints to:
//   - Disable rate limiting entirely (Disabled: true)
//   - Override the scope detection (Scope: ratelimit.ScopeRedirect)
//   - Define custom limits (Limits: []ratelimit.LimitConfig{...})
//
// When the limit store fails, redirect-scoped operations are let through and
// every other operation gets a 500.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		path := getOperationPath(ctx)
		cfg := ratelimit.GetEndpointConfig(ctx)

		if cfg != nil && cfg.Disabled {
			logger.Debug("rate limiting disabled for endpoint",
				zap.String("path", path), zap.String("method", ctx.Method()))
			next(ctx)

			return
		}

		var (
			exceeded *ratelimit.LimitExceeded
			err      error
		)

		if cfg != nil && len(cfg.Limits) > 0 {
			exceeded, err = checkCustomLimits(ctx, limiter, cfg.Limits)
		} else {
			_, exceeded, err = limiter.Allow(ctx.Context(), clientKey(ctx), resolver.Resolve(ctx))
		}

		switch {
		case err != nil:
			handleStoreFailure(api, ctx, cfg, path, err, logger, next)
		case exceeded != nil:
			handleRateLimitExceeded(api, ctx, exceeded, path, logger)
		default:
			next(ctx)
		}
	}
}

// getOperationPath extracts the path from the operation, if available.
func getOperationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

// handleStoreFailure fails open on the redirect path and closed elsewhere.
func handleStoreFailure(
	api huma.API,
	ctx huma.Context,
	cfg *ratelimit.EndpointConfig,
	path string,
	err error,
	logger *zap.Logger,
	next func(huma.Context),
) {
	if cfg != nil && cfg.Scope == ratelimit.ScopeRedirect {
		logger.Error("rate limit check failed, allowing redirect",
			zap.String("path", path), zap.Error(err))
		next(ctx)

		return
	}

	logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
	_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)
}

// handleRateLimitExceeded logs and responds to a rate limit exceeded condition.
func handleRateLimitExceeded(
	api huma.API,
	ctx huma.Context,
	exceeded *ratelimit.LimitExceeded,
	path string,
	logger *zap.Logger,
) {
	msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
		exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
	if exceeded.Scope != "" {
		msg = fmt.Sprintf("rate limit exceeded: %s scope, %d/%d requests in %s",
			exceeded.Scope, exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
	}

	logger.Warn("rate limit exceeded",
		zap.String("path", path),
		zap.String("method", ctx.Method()),
		zap.String("scope", string(exceeded.Scope)),
		zap.Int64("count", exceeded.Count),
		zap.Int64("max", exceeded.Config.Max),
		zap.Duration("window", exceeded.Config.Window),
		zap.Duration("retry_after", exceeded.RetryAfter),
		zap.String("client_ip", clientIP(ctx)),
	)

	ctx.SetHeader("Retry-After", strconv.Itoa(int(math.Ceil(exceeded.RetryAfter.Seconds()))))
	ctx.SetHeader("X-RateLimit-Limit", strconv.FormatInt(exceeded.Config.Max, 10))
	ctx.SetHeader("X-RateLimit-Remaining", "0")
	// Unix milliseconds.
	ctx.SetHeader("X-RateLimit-Reset", strconv.FormatInt(exceeded.ResetAt.UnixMilli(), 10))

	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)
}

// checkCustomLimits applies custom rate limits defined in endpoint config and
// returns the first limit exceeded, if any.
//
// The rate limit key uses the operation's route template (e.g., "/{slug}"),
// not the actual request path, so all requests matching the same route share
// counters per client regardless of path values.
func checkCustomLimits(
	ctx huma.Context,
	limiter *ratelimit.PolicyLimiter,
	limits []ratelimit.LimitConfig,
) (*ratelimit.LimitExceeded, error) {
	op := ctx.Operation()
	if op == nil {
		return nil, errMissingOperation
	}

	clientK := clientKey(ctx)

	for _, limit := range limits {
		key := fmt.Sprintf("%s:custom:%s:%d", clientK, op.Path, limit.Window.Milliseconds())

		exceeded, err := limiter.Check(ctx.Context(), key, limit)
		if err != nil {
			return nil, fmt.Errorf("checking custom limit for %s: %w", op.Path, err)
		}

		if exceeded != nil {
			return exceeded, nil
		}
	}

	return nil, nil
}
