// Package handlers exposes the dashboard's HTTP endpoints over Fiber.
// Handlers parse and default query parameters, delegate to the services
// layer, and map service errors onto JSON error envelopes.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"creashort/internal/logging"
	"creashort/internal/query"
	"creashort/internal/services"
)

// AgentHandler serves the agent listing, detail and cleanup endpoints
type AgentHandler struct {
	agents *services.AgentService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agents *services.AgentService) *AgentHandler {
	return &AgentHandler{agents: agents}
}

// List handles GET /api/dashboard/agents
func (h *AgentHandler) List(c *fiber.Ctx) error {
	opts := services.ListAgentsOptions{
		Status: c.Query("status", query.FilterAll),
		Search: c.Query("search"),
		Page:   query.ParsePage(c.QueryInt("page", 1), c.QueryInt("limit", 10), 10),
	}

	agents, pagination, err := h.agents.ListAgents(c.Context(), opts)
	if err != nil {
		logging.WithQuery("agents").Error("Failed to list agents", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch agents",
		})
	}

	return c.JSON(fiber.Map{
		"agents":     agents,
		"pagination": pagination,
	})
}

// Get handles GET /api/dashboard/agents/:agentId
func (h *AgentHandler) Get(c *fiber.Ctx) error {
	agentID := c.Params("agentId")

	details, err := h.agents.GetAgent(c.Context(), agentID)
	if err != nil {
		if errors.Is(err, services.ErrAgentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Agent not found",
			})
		}
		logging.WithQuery("agents").Error("Failed to get agent", "agentId", agentID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch agent details",
		})
	}

	return c.JSON(details)
}

// Cleanup handles DELETE /api/dashboard/cleanup
func (h *AgentHandler) Cleanup(c *fiber.Ctx) error {
	result, err := h.agents.CleanupFailed(c.Context())
	if err != nil {
		logging.WithQuery("cleanup").Error("Cleanup failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clean up failed generations",
		})
	}

	return c.JSON(result)
}
