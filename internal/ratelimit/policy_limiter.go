package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// LimitExceeded contains information about which limit was exceeded.
type LimitExceeded struct {
	Scope      Scope
	Config     LimitConfig
	Count      int64
	RetryAfter time.Duration
	// ResetAt is when the earliest counted request leaves the window.
	ResetAt time.Time
}

// PolicyLimiter enforces rate limits based on a policy and resolved scopes.
type PolicyLimiter struct {
	store  Store
	policy *Policy
	now    func() time.Time
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// Allow checks if a request should be allowed based on the client key and applicable scopes.
// The LimitExceeded return value describes the limit that was hit (nil if allowed).
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		limits, ok := l.policy.Limits[scope]
		if !ok {
			continue
		}

		for _, limit := range limits {
			// Key combines client + scope + window for independent tracking
			key := fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())

			exceeded, err := l.Check(ctx, key, limit)
			if err != nil {
				return false, nil, err
			}

			if exceeded != nil {
				exceeded.Scope = scope

				return false, exceeded, nil
			}
		}
	}

	return true, nil, nil
}

// Check records one request against a single limit under key.
func (l *PolicyLimiter) Check(ctx context.Context, key string, limit LimitConfig) (*LimitExceeded, error) {
	usage, err := l.store.Record(ctx, key, limit.Window)
	if err != nil {
		return nil, err
	}

	if usage.Count <= limit.Max {
		return nil, nil
	}

	resetAt := usage.ResetAt(limit.Window)

	retryAfter := resetAt.Sub(l.now())
	if retryAfter < time.Second {
		retryAfter = time.Second
	}

	return &LimitExceeded{
		Config:     limit,
		Count:      usage.Count,
		RetryAfter: retryAfter,
		ResetAt:    resetAt,
	}, nil
}
