package ratelimit_test

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/slugly/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMultipartNotSupported = errors.New("multipart not supported in mock")

// mockHumaContext implements huma.Context for testing scope resolution.
type mockHumaContext struct {
	method    string
	operation *huma.Operation
}

func (m *mockHumaContext) Operation() *huma.Operation {
	return m.operation
}
func (m *mockHumaContext) Context() context.Context          { return context.Background() }
func (m *mockHumaContext) TLS() *tls.ConnectionState         { return nil }
func (m *mockHumaContext) Version() huma.ProtoVersion        { return huma.ProtoVersion{} }
func (m *mockHumaContext) Method() string                    { return m.method }
func (m *mockHumaContext) Host() string                      { return "" }
func (m *mockHumaContext) RemoteAddr() string                { return "" }
func (m *mockHumaContext) URL() url.URL                      { return url.URL{} }
func (m *mockHumaContext) Param(_ string) string             { return "" }
func (m *mockHumaContext) Query(_ string) string             { return "" }
func (m *mockHumaContext) Header(_ string) string            { return "" }
func (m *mockHumaContext) EachHeader(_ func(string, string)) {}
func (m *mockHumaContext) BodyReader() io.Reader             { return nil }
func (m *mockHumaContext) GetMultipartForm() (*multipart.Form, error) {
	return nil, errMultipartNotSupported
}
func (m *mockHumaContext) SetReadDeadline(_ time.Time) error { return nil }
func (m *mockHumaContext) SetStatus(_ int)                   {}
func (m *mockHumaContext) Status() int                       { return 0 }
func (m *mockHumaContext) AppendHeader(_, _ string)          {}
func (m *mockHumaContext) SetHeader(_, _ string)             {}
func (m *mockHumaContext) BodyWriter() io.Writer             { return nil }

func TestScopesFor(t *testing.T) {
	t.Parallel()

	read := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead}
	write := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}
	redirect := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRedirect}

	tests := []struct {
		name   string
		method string
		cfg    *ratelimit.EndpointConfig
		want   []ratelimit.Scope
	}{
		{"GET reads", http.MethodGet, nil, read},
		{"HEAD reads", http.MethodHead, nil, read},
		{"OPTIONS reads", http.MethodOptions, nil, read},
		{"POST writes", http.MethodPost, nil, write},
		{"PUT writes", http.MethodPut, nil, write},
		{"PATCH writes", http.MethodPatch, nil, write},
		{"DELETE writes", http.MethodDelete, nil, write},
		{"configured scope wins", http.MethodGet, &ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect}, redirect},
		{"configured scope overrides POST", http.MethodPost, &ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead}, read},
		{
			"custom limits without scope use the method",
			http.MethodPost,
			&ratelimit.EndpointConfig{Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 10}}},
			write,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ratelimit.ScopesFor(tt.method, tt.cfg))
		})
	}
}

func TestResolvers(t *testing.T) {
	t.Parallel()

	redirectOp := &huma.Operation{
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect},
		},
	}

	t.Run("method resolver ignores metadata", func(t *testing.T) {
		t.Parallel()

		scopes := ratelimit.NewMethodScopeResolver().Resolve(&mockHumaContext{method: http.MethodGet, operation: redirectOp})

		assert.Equal(t, []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead}, scopes)
	})

	t.Run("operation resolver uses metadata scope", func(t *testing.T) {
		t.Parallel()

		scopes := ratelimit.NewOperationScopeResolver().Resolve(&mockHumaContext{method: http.MethodGet, operation: redirectOp})

		assert.Equal(t, []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRedirect}, scopes)
	})

	t.Run("operation resolver falls back to method", func(t *testing.T) {
		t.Parallel()

		resolver := ratelimit.NewOperationScopeResolver()

		for _, op := range []*huma.Operation{nil, {}, {Metadata: map[string]any{"other": "value"}}} {
			scopes := resolver.Resolve(&mockHumaContext{method: http.MethodPost, operation: op})

			assert.Equal(t, []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}, scopes)
		}
	})
}

func TestGetEndpointConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		operation *huma.Operation
		wantNil   bool
	}{
		{"nil operation", nil, true},
		{"no metadata", &huma.Operation{}, true},
		{"wrong type", &huma.Operation{Metadata: map[string]any{ratelimit.MetadataKey: "wrong type"}}, true},
		{
			"valid config",
			&huma.Operation{Metadata: map[string]any{
				ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead, Disabled: true},
			}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := ratelimit.GetEndpointConfig(&mockHumaContext{operation: tt.operation})

			if tt.wantNil {
				assert.Nil(t, cfg)

				return
			}

			require.NotNil(t, cfg)
			assert.Equal(t, ratelimit.ScopeRead, cfg.Scope)
			assert.True(t, cfg.Disabled)
		})
	}
}
