package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	db      Pinger
	service string
}

// NewHealthHandler creates a HealthHandler. db may be nil when the service
// runs on the in-memory store.
func NewHealthHandler(db Pinger, service string) *HealthHandler {
	return &HealthHandler{db: db, service: service}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok", "service": h.service}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		} else {
			body["database"] = "ok"
		}
	}

	c.JSON(status, body)
}
