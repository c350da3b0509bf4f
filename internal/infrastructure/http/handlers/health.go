package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Pinger is a backing store that can report liveness. *pgxpool.Pool and
// *memory.Store satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves /health with store and optional Redis checks.
type HealthHandler struct {
	store     Pinger
	storeName string
	redis     *redis.Client
	log       zerolog.Logger
}

// NewHealthHandler creates a health handler (redis optional). Failure details
// go to the log only.
func NewHealthHandler(store Pinger, storeName string, redisClient *redis.Client, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{store: store, storeName: storeName, redis: redisClient, log: log}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allOK := true

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Str("check", h.storeName).Msg("health check failed")
		checks[h.storeName] = "down"
		allOK = false
	} else {
		checks[h.storeName] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.log.Warn().Err(err).Str("check", "redis").Msg("health check failed")
			checks["redis"] = "down"
			allOK = false
		} else {
			checks["redis"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !allOK {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:  "unhealthy",
			Checks:  checks,
			Message: "one or more checks failed",
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status: "ok",
		Checks: checks,
	})
}
