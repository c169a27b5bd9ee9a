package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	catalog Pinger
}

// NewHealthHandler creates the health handler. catalog may be nil when no
// readiness dependency is wired.
func NewHealthHandler(catalog Pinger) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// Ping is the basic reachability check.
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Readiness verifies the product catalog connection.
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	if h.catalog != nil {
		if err := h.catalog.Ping(ctx); err != nil {
			c.JSON(503, utils.H{
				"status":  "not_ready",
				"catalog": "unhealthy",
				"error":   err.Error(),
			})
			return
		}
	}
	c.JSON(200, utils.H{
		"status":  "ready",
		"catalog": "healthy",
	})
}

// Liveness reports process liveness only.
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status": "alive",
	})
}
