package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", promhttp.Handler())

	// API endpoints — auth required. Not mounted if no auth configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth))
			r.Get("/status", g.handleStatus())
			r.Get("/ws/stats", g.handleStatsSocket())
			r.Route("/api", func(r chi.Router) {
				r.Post("/query", g.handleQuery())
				r.Post("/ingest", g.handleIngest())
				r.Post("/migrate", g.handleMigrate())
				r.Get("/dashboard", g.handleDashboard())
				r.Get("/report", g.handleReport())
				r.Get("/benefit", g.handleBenefit())
			})
		})
	}

	return r
}
