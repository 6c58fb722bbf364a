package handler

import (
	"context"
	"time"

	"edugenie/internal/dto"
	"edugenie/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is implemented by every backing store the service depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the reachability of optional backing stores.
type HealthHandler struct {
	components map[string]Pinger
}

// NewHealthHandler creates a HealthHandler. Nil pingers are reported as "disabled".
func NewHealthHandler(components map[string]Pinger) *HealthHandler {
	return &HealthHandler{components: components}
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Components: make(map[string]string, len(h.components))}
	for name, p := range h.components {
		if p == nil {
			resp.Components[name] = "disabled"
			continue
		}
		if err := p.Ping(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.String("component", name), zap.Error(err))
			resp.Components[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Components[name] = "up"
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
