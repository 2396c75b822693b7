package handler

import (
	"github.com/gofiber/fiber/v2"

	"asrama/internal/domain"
	"asrama/internal/middleware"
	"asrama/internal/pkg/validate"
	"asrama/internal/service/audit"
	"asrama/internal/service/maintenance"
)

const maintenanceEntity = "MAINTENANCE"

type MaintenanceHandler struct {
	maintenanceService maintenance.Service
	auditService       audit.Service
	lifecycle          *domain.Lifecycle
}

func NewMaintenanceHandler(maintenanceService maintenance.Service, auditService audit.Service) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
		auditService:       auditService,
		lifecycle:          domain.NewLifecycle(domain.MaintenancePolicy),
	}
}

func (h *MaintenanceHandler) Create(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var input domain.CreateMaintenanceInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.maintenanceService.Create(c.Context(), actor, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *MaintenanceHandler) List(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	status, err := statusQuery(c, h.lifecycle)
	if err != nil {
		return err
	}

	result, err := h.maintenanceService.List(c.Context(), actor, status, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// Get opens a request. Staff viewing a submitted request review it unless
// ?auto_review=false is passed.
func (h *MaintenanceHandler) Get(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "request")
	if err != nil {
		return err
	}

	var req *domain.MaintenanceRequest
	if c.QueryBool("auto_review", true) {
		req, err = h.maintenanceService.ViewAndAutoReview(c.Context(), actor, id, middleware.RequestMeta(c))
	} else {
		req, err = h.maintenanceService.Get(c.Context(), actor, id)
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *MaintenanceHandler) Update(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "request")
	if err != nil {
		return err
	}

	var input domain.UpdateMaintenanceInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.maintenanceService.UpdateBody(c.Context(), actor, id, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *MaintenanceHandler) Delete(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "request")
	if err != nil {
		return err
	}

	if err := h.maintenanceService.Delete(c.Context(), actor, id); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *MaintenanceHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "request")
	if err != nil {
		return err
	}

	var input domain.UpdateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return err
	}

	req, err := h.maintenanceService.UpdateStatus(c.Context(), actor, id, input.Status, middleware.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *MaintenanceHandler) Revert(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "request")
	if err != nil {
		return err
	}

	req, err := h.maintenanceService.Revert(c.Context(), actor, id, middleware.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *MaintenanceHandler) History(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "request")
	if err != nil {
		return err
	}

	if _, err := h.maintenanceService.Get(c.Context(), actor, id); err != nil {
		return err
	}

	result, err := h.auditService.History(c.Context(), actor, maintenanceEntity, id, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
