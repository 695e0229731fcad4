package handlers

import (
	"dataweave/internal/models"
	"dataweave/internal/orchestrator"

	"github.com/gofiber/fiber/v2"
)

// HistoryHandler serves a session's stored interaction history
type HistoryHandler struct {
	engine   *orchestrator.Engine
	capacity int
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(engine *orchestrator.Engine, capacity int) *HistoryHandler {
	return &HistoryHandler{engine: engine, capacity: capacity}
}

// Handle returns up to the history capacity of interactions for a
// session, oldest first. An unknown session yields an empty list.
func (h *HistoryHandler) Handle(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session id is required",
		})
	}

	limit := c.QueryInt("limit", h.capacity)
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	history := h.engine.History(c.UserContext(), sessionID, limit)
	if history == nil {
		history = []models.InteractionRecord{}
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"count":      len(history),
		"history":    history,
	})
}
