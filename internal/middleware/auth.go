package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/slugly/internal/auth"
	"github.com/serroba/slugly/internal/handlers"
	"go.uber.org/zap"
)

// Authenticate resolves the caller's owner identity from a Bearer token.
// Requests without an Authorization header continue anonymously. A header
// carrying an invalid or expired token is rejected with 401, except on
// operations marked handlers.MetadataPublic, which continue anonymously.
func Authenticate(api huma.API, tokens *auth.Tokens, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if header == "" {
			next(ctx)

			return
		}

		reject := func(msg string, err error) {
			logger.Debug("rejected credentials",
				zap.String("client_ip", clientIP(ctx)),
				zap.Bool("public", public(ctx)),
				zap.Error(err),
			)

			if public(ctx) {
				next(ctx)

				return
			}

			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, msg)
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			reject("malformed authorization header", errMalformedHeader)

			return
		}

		owner, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "token expired"
			}

			reject(msg, err)

			return
		}

		next(huma.WithContext(ctx, handlers.ContextWithOwner(ctx.Context(), owner)))
	}
}

var errMalformedHeader = errors.New("malformed authorization header")

func public(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil {
		return false
	}

	v, _ := op.Metadata[handlers.MetadataPublic].(bool)

	return v
}
