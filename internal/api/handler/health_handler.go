package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const readinessTimeout = 3 * time.Second

// HealthHandler serves the liveness and readiness probes. Liveness answers
// immediately; readiness pings the document store (profiles, services) and
// the session record store before declaring the service ready.
type HealthHandler struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewHealthHandler(db *mongo.Database, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		mongo: db,
		redis: rdb,
	}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type probeStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                 `json:"status"`
	Dependencies map[string]probeStatus `json:"dependencies"`
}

func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := map[string]probeStatus{
		"mongodb": h.probeMongo(ctx),
		"redis":   h.probeRedis(ctx),
	}

	status, code := "ok", http.StatusOK
	for _, d := range deps {
		if d.Status != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	return c.JSON(code, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}

func (h *HealthHandler) probeMongo(ctx context.Context) probeStatus {
	if err := h.mongo.Client().Ping(ctx, nil); err != nil {
		return probeStatus{Status: "unhealthy", Error: err.Error()}
	}
	return probeStatus{Status: "ok"}
}

func (h *HealthHandler) probeRedis(ctx context.Context) probeStatus {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return probeStatus{Status: "unhealthy", Error: err.Error()}
	}
	return probeStatus{Status: "ok"}
}
