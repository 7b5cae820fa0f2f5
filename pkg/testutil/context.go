package testutil

import (
	"context"
	"net/http"
	"time"

	"agricert/internal/authz"
	"agricert/pkg/requestcontext"
)

// WithClaims adds authenticated claims to the request context, simulating
// what the auth middleware does for authenticated requests.
func WithClaims(req *http.Request, claims authz.Claims) *http.Request {
	ctx := requestcontext.WithClaims(req.Context(), claims)
	return req.WithContext(ctx)
}

// Context builds a service-test context with claims and a pinned clock.
func Context(claims authz.Claims, now time.Time) context.Context {
	ctx := requestcontext.WithClaims(context.Background(), claims)
	return requestcontext.WithTime(ctx, now)
}
