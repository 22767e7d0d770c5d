package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"siteforge/realtime/internal/api"
)

func New(h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/v1/healthz", h.Health)
	r.Get("/api/v1/projects/{id}/presence", h.ProjectPresence)

	r.Get("/ws", h.SocketHandler)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
