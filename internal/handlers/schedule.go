package handlers

import (
	"github.com/gofiber/fiber/v2"

	"creashort/internal/logging"
	"creashort/internal/query"
	"creashort/internal/services"
)

// ScheduleHandler serves the generation-schedule listing
type ScheduleHandler struct {
	schedule *services.ScheduleService
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(schedule *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// GetSchedule handles GET /api/dashboard/schedule
func (h *ScheduleHandler) GetSchedule(c *fiber.Ctx) error {
	scheduleType := c.Query("type", services.ScheduleAll)
	days := c.QueryInt("days", 7)
	page := query.ParsePage(c.QueryInt("page", 1), c.QueryInt("limit", 10), 10)

	result, err := h.schedule.GetSchedule(c.Context(), scheduleType, days, page)
	if err != nil {
		logging.WithQuery("schedule").Error("Failed to fetch schedule", "type", scheduleType, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch schedule",
		})
	}

	return c.JSON(result)
}
