package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"asrama/internal/middleware"
	"asrama/internal/service/dashboard"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats serves the caller's dorm. Admins pass ?dorm_id=.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var dormID *uuid.UUID
	if raw := c.Query("dorm_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return middleware.BadRequest("Invalid dorm ID")
		}
		dormID = &id
	}

	stats, err := h.dashboardService.GetStats(c.Context(), actor, dormID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
