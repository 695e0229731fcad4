package handlers

import (
	"dataweave/internal/models"
	"dataweave/internal/orchestrator"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// QueryHandler handles query pipeline requests
type QueryHandler struct {
	engine *orchestrator.Engine
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(engine *orchestrator.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// Handle runs one query through the pipeline and returns the full
// request state, including a clarification when the query is unroutable.
func (h *QueryHandler) Handle(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	state := h.engine.Process(c.UserContext(), req.Query, req.SessionID)

	status := fiber.StatusOK
	if state.Error != "" && state.Combined == nil {
		status = fiber.StatusBadRequest
	} else if state.Combined != nil && !state.Combined.Success {
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(queryResponse(state))
}

// queryResponse shapes the request state for the wire, surfacing the
// classification strings the state keeps as enums.
func queryResponse(state *models.RequestState) fiber.Map {
	resp := fiber.Map{
		"request_id":     state.RequestID,
		"query":          state.Query,
		"domain":         state.Domain.String(),
		"intent":         state.Intent.String(),
		"complexity":     state.Complexity.String(),
		"execution_path": state.ExecutionPath,
	}
	if state.SessionID != "" {
		resp["session_id"] = state.SessionID
	}
	if len(state.SubQueries) > 0 {
		resp["sub_queries"] = state.SubQueries
	}
	if state.Combined != nil {
		resp["result"] = state.Combined
	}
	if state.Error != "" {
		resp["error"] = state.Error
	}
	return resp
}
