package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"creashort/internal/database"
)

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	mongoDB *database.MongoDB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mongoDB *database.MongoDB) *HealthHandler {
	return &HealthHandler{mongoDB: mongoDB}
}

// Health handles GET /health. Reports degraded with a 503 when the document
// store does not answer a ping.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	dbStatus := "connected"
	status := "healthy"
	code := fiber.StatusOK

	if err := h.mongoDB.Ping(c.Context()); err != nil {
		dbStatus = "disconnected"
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
