package middleware

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"agricert/pkg/requestcontext"
)

// ClientMetadata records the caller's IP and a normalized user-agent family
// in the context so log lines can carry them without re-parsing headers.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithClientIP(ctx, clientIP(r))
		ctx = requestcontext.WithUserAgent(ctx, normalizeUserAgent(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP extracts the real client IP, handling proxies and load balancers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the original client.
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}

// normalizeUserAgent reduces the raw header to "browser/os" so logs don't
// carry full fingerprinting strings.
func normalizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	os := ua.OSInfo().Name
	switch {
	case name == "" && os == "":
		return "other"
	case os == "":
		return name
	case name == "":
		return os
	}
	return name + "/" + os
}
