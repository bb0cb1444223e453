package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type healthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	*BaseHandler
	version string
	pool    *pgxpool.Pool
	redis   *redis.Client
}

func NewHealthHandler(base *BaseHandler, version string, pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		BaseHandler: base,
		version:     version,
		pool:        pool,
		redis:       redisClient,
	}
}

// GetLiveness implements the liveness probe endpoint.
// This is a lightweight check with no external dependencies.
func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONResponse(w, r, healthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.version,
	}, http.StatusOK)
}

// GetReadiness implements the readiness probe endpoint.
// This checks all critical dependencies.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK
	checks := map[string]string{}

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = "down"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "up"
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = "down"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["redis"] = "up"
	}

	h.WriteJSONResponse(w, r, healthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   h.version,
		Checks:    checks,
	}, httpStatus)
}
