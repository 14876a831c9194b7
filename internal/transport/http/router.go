// Package httptransport assembles the chi router: the shared middleware
// chain, every context handler, and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	childhandler "careflow/internal/child/handler"
	matchinghandler "careflow/internal/matching/handler"
	missinghandler "careflow/internal/missing/handler"
	"careflow/internal/platform/metrics"
	"careflow/internal/platform/middleware"
	placementhandler "careflow/internal/placement/handler"
	riskhandler "careflow/internal/risk/handler"
	"careflow/internal/transport/http/shared"
)

// Registrar is anything that can attach routes to the router. Each context
// handler implements it.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration

	Children   *childhandler.Handler
	Placements *placementhandler.Handler
	Matching   *matchinghandler.Handler
	Missing    *missinghandler.Handler
	Risk       *riskhandler.Handler

	// Health reports readiness of backing stores; nil checks always pass.
	Health func(ctx context.Context) error
}

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.Recovery(deps.Logger))
		api.Use(middleware.RequestID)
		api.Use(middleware.Actor)
		api.Use(middleware.RequestTime)
		api.Use(middleware.Logger(deps.Logger))
		api.Use(middleware.Timeout(deps.RequestTimeout))
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.Latency(deps.Metrics))

		for _, h := range []Registrar{deps.Children, deps.Placements, deps.Matching, deps.Missing, deps.Risk} {
			h.Register(api)
		}
	})

	return r
}

func handleHealth(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
