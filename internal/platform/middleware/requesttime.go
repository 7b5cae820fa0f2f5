package middleware

import (
	"net/http"
	"time"

	"agricert/pkg/requestcontext"
)

// RequestTime pins the wall clock once per request so every timestamp within
// one operation agrees.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
