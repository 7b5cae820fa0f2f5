// Package middleware holds the HTTP middleware chain: request identity,
// request time, client metadata, and authentication.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"agricert/internal/authz"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/platform/httputil"
	"agricert/pkg/requestcontext"
)

// TokenValidator turns a bearer token into Claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (authz.Claims, error)
}

// RequireAuth validates the bearer token and stores the caller's claims in
// the request context. Requests without a valid token are rejected before
// reaching any handler.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access, missing bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
					"user_agent", requestcontext.UserAgent(ctx))
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or malformed Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, invalid token",
					"error", err, "request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
					"user_agent", requestcontext.UserAgent(ctx))
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithClaims(ctx, claims)))
		})
	}
}
