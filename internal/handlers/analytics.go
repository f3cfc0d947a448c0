package handlers

import (
	"github.com/gofiber/fiber/v2"

	"creashort/internal/logging"
	"creashort/internal/query"
	"creashort/internal/services"
)

// AnalyticsHandler serves the analytics and overview endpoints
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetAnalytics handles GET /api/dashboard/analytics
func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	period := c.Query("period", query.PeriodWeek)
	agentID := c.Query("agentId")

	report, err := h.analytics.GetAnalytics(c.Context(), period, agentID)
	if err != nil {
		logging.WithQuery("analytics").Error("Failed to compute analytics", "period", period, "agentId", agentID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch analytics",
		})
	}

	return c.JSON(report)
}

// GetOverview handles GET /api/dashboard/overview
func (h *AnalyticsHandler) GetOverview(c *fiber.Ctx) error {
	stats, err := h.analytics.GetOverview(c.Context())
	if err != nil {
		logging.WithQuery("overview").Error("Failed to compute overview", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch overview stats",
		})
	}

	return c.JSON(stats)
}
