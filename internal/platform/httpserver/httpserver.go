// Package httpserver builds the HTTP server with the timeouts this API can
// afford.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server ready for ListenAndServe. Every endpoint is a small
// JSON exchange (the largest response is one page of certificates), so slow
// clients get cut off rather than holding connections: 5s to send headers,
// 15s per request overall, and 60s idle for keep-alive reuse.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
