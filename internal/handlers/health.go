package handlers

import (
	"dataweave/internal/backends"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	registry *backends.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *backends.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"backends":  h.registry.Status(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
