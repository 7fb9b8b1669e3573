// Package httptransport assembles the public HTTP surface: the submission
// and review gateways plus health and metrics endpoints.
package httptransport

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"bizdir/internal/platform/middleware"
	"bizdir/internal/reconcile/handler"
	"bizdir/pkg/platform/httputil"
)

// Registrar is anything that mounts routes on the router. Both gateways
// implement it.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires the global middleware chain and mounts the gateways.
// db and redisClient may be nil; the health endpoint reports what it can
// actually reach.
func NewRouter(logger *slog.Logger, db *sql.DB, redisClient *redis.Client, gateways ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", handleHealth(db, redisClient))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, g := range gateways {
		g.Register(r)
	}
	return r
}

func handleHealth(db *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := http.StatusOK
		checks := map[string]string{}

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				checks["postgres"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks["postgres"] = "ok"
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				checks["redis"] = "down"
			} else {
				checks["redis"] = "ok"
			}
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": checks,
		})
	}
}

var (
	_ Registrar = (*handler.Handler)(nil)
	_ Registrar = (*handler.AdminHandler)(nil)
)
