package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	redis  *redis.Client
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler. redis may be nil when
// caching is disabled.
func NewHealthHandler(redisClient *redis.Client, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		redis:  redisClient,
		logger: logger,
	}
}

// GetHealth returns the basic health status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "fpl-optimizer",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// Redis is optional; a failed cache only degrades the service.
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			response.Status = "degraded"
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	} else {
		response.Checks["redis"] = "not_configured"
	}

	c.JSON(http.StatusOK, response)
}
