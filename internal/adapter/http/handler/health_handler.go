package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const readinessTimeout = 5 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves /health and /ready. Postgres holds the ledger and is
// required; Redis only backs the currency cache and idempotency keys, both of
// which fall back when it is gone, so losing it only degrades readiness.
type HealthHandler struct {
	postgres Pinger
	redis    Pinger
}

func NewHealthHandler(postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redis}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.postgres.Ping(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("readiness: postgres unreachable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"postgres": err.Error(),
		})
		return
	}

	body := map[string]string{"status": "ready", "postgres": "ok", "redis": "ok"}
	if err := h.redis.Ping(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("readiness: redis unreachable")
		body["status"] = "degraded"
		body["redis"] = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}
