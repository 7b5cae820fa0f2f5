// Package httpapi assembles the HTTP surface: middleware chain, public
// endpoints, and the authenticated API.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicationhandler "agricert/internal/application/handler"
	certificatehandler "agricert/internal/certificate/handler"
	farmhandler "agricert/internal/farm/handler"
	"agricert/internal/platform/metrics"
	"agricert/internal/platform/middleware"
	staffhandler "agricert/internal/staff/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Farms        *farmhandler.Handler
	Applications *applicationhandler.Handler
	Certificates *certificatehandler.Handler
	Staff        *staffhandler.Handler

	TokenValidator middleware.TokenValidator
	Logger         *slog.Logger
	Registry       *prometheus.Registry
}

// NewRouter wires all endpoints. Certificate verification, health, and
// metrics are public; everything else requires a bearer token.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	if deps.Registry != nil {
		r.Use(metrics.NewHTTP(deps.Registry).Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	r.Mount("/v1/verification", deps.Certificates.PublicRoutes())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.TokenValidator, deps.Logger))
		r.Mount("/v1/farms", deps.Farms.Routes())
		r.Mount("/v1/applications", deps.Applications.Routes())
		r.Mount("/v1/certificates", deps.Certificates.Routes())
		r.Mount("/v1/staff", deps.Staff.Routes())
	})

	return r
}
