package handlers

import (
	"github.com/gofiber/fiber/v2"

	"creashort/internal/logging"
	"creashort/internal/query"
	"creashort/internal/services"
)

// UserAgentsHandler serves the per-user agent listing
type UserAgentsHandler struct {
	userAgents *services.UserAgentsService
}

// NewUserAgentsHandler creates a new users+agents handler
func NewUserAgentsHandler(userAgents *services.UserAgentsService) *UserAgentsHandler {
	return &UserAgentsHandler{userAgents: userAgents}
}

// GetUsersWithAgents handles GET /api/dashboard/users-agents
func (h *UserAgentsHandler) GetUsersWithAgents(c *fiber.Ctx) error {
	userID := c.Query("userId")
	customInstructions := c.Query("customInstructions")
	duplicatesOnly := c.QueryBool("duplicatesOnly", false)
	page := query.ParsePage(c.QueryInt("page", 1), c.QueryInt("limit", 20), 20)

	result, err := h.userAgents.GetUsersWithAgents(c.Context(), userID, customInstructions, duplicatesOnly, page)
	if err != nil {
		logging.WithQuery("users-agents").Error("Failed to fetch users with agents", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(result)
}
