package handlers

import (
	"dataweave/internal/backends"
	"dataweave/internal/jobs"

	"github.com/gofiber/fiber/v2"
)

// StatusHandler reports backend availability and scheduled job state
type StatusHandler struct {
	registry  *backends.Registry
	scheduler *jobs.JobScheduler
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(registry *backends.Registry, scheduler *jobs.JobScheduler) *StatusHandler {
	return &StatusHandler{registry: registry, scheduler: scheduler}
}

// Handle returns the availability of every registered backend.
func (h *StatusHandler) Handle(c *fiber.Ctx) error {
	resp := fiber.Map{
		"backends": h.registry.Status(),
	}
	if h.scheduler != nil {
		resp["jobs"] = h.scheduler.GetStatus()
	}
	return c.JSON(resp)
}
