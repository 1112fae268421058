package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"subsidy/internal/platform/httpserver"
	"subsidy/internal/platform/metrics"
	"subsidy/internal/subsidy/handler"
	"subsidy/pkg/platform/middleware/metadata"
	"subsidy/pkg/platform/middleware/requesttime"
)

// NewRouter assembles middleware and routes.
func NewRouter(h *handler.Handler, m *metrics.Metrics, g prometheus.Gatherer, checks map[string]httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(m.Middleware)

	r.Get("/health", httpserver.Health(checks))
	r.Handle("/metrics", metrics.Handler(g))
	h.Register(r)
	return r
}
