package handler

import (
	"github.com/gofiber/fiber/v2"

	"asrama/internal/domain"
	"asrama/internal/middleware"
	"asrama/internal/pkg/validate"
	"asrama/internal/service/assignment"
)

type AssignmentHandler struct {
	assignmentService assignment.Service
}

func NewAssignmentHandler(assignmentService assignment.Service) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

func (h *AssignmentHandler) AssignOne(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var input domain.AssignInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.assignmentService.AssignOne(c.Context(), actor, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *AssignmentHandler) AssignBulk(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var input domain.BulkAssignInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.assignmentService.AssignBulk(c.Context(), actor, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":  created,
		"count": len(created),
	})
}

func (h *AssignmentHandler) Revoke(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var input domain.RevokeInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return err
	}

	revoked, err := h.assignmentService.Revoke(c.Context(), actor, input.ResidentID, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	if revoked == nil {
		return c.Status(fiber.StatusNoContent).SendString("")
	}

	return c.Status(fiber.StatusOK).JSON(revoked)
}

func (h *AssignmentHandler) Current(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	residentID, err := parseID(c, "id", "resident")
	if err != nil {
		return err
	}

	current, err := h.assignmentService.Current(c.Context(), actor, residentID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(current)
}

func (h *AssignmentHandler) ListByRoom(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	roomID, err := parseID(c, "id", "room")
	if err != nil {
		return err
	}

	assignments, err := h.assignmentService.ListByRoom(c.Context(), actor, roomID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(assignments)
}
