package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"

	"github.com/xdamman/stripe-mcp-fridge/internal/usecase"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	providerURL string
	catalog     *usecase.ToolCatalog
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(providerURL string, catalog *usecase.ToolCatalog) *HealthHandler {
	return &HealthHandler{
		providerURL: providerURL,
		catalog:     catalog,
	}
}

// Ping basic health check
// @Summary Ping
// @Description Checks that the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Readiness readiness check
// @Summary Readiness check
// @Description Reports whether the service can take chat traffic. A cold tool catalog does not block readiness; the loop runs without tools until the server is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	if h.providerURL == "" {
		c.JSON(503, utils.H{
			"status":   "not_ready",
			"provider": "unconfigured",
		})
		return
	}

	tools := "cold"
	cached, ok := h.catalog.Cached()
	if ok {
		tools = "cached"
	}

	c.JSON(200, utils.H{
		"status":       "ready",
		"provider":     "configured",
		"tools":        tools,
		"tools_cached": cached,
	})
}

// Liveness liveness check
// @Summary Liveness check
// @Description Checks that the process is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status": "alive",
	})
}
