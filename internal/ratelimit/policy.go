package ratelimit

import "time"

// LimitConfig caps requests per sliding window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the limits enforced for them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy returns the limits applied when an endpoint has no custom configuration.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: time.Minute, Max: 2000},
			},
			ScopeRead: {
				{Window: time.Minute, Max: 1000},
			},
			ScopeRedirect: {
				{Window: time.Minute, Max: 600},
			},
			ScopeWrite: {
				{Window: 5 * time.Second, Max: 5},
				{Window: time.Hour, Max: 200},
			},
		},
	}
}
