package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"asrama/internal/domain"
	"asrama/internal/middleware"
	"asrama/internal/pkg/validate"
	"asrama/internal/service/audit"
	"asrama/internal/service/complaint"
)

const complaintEntity = "COMPLAINT"

type ComplaintHandler struct {
	complaintService complaint.Service
	auditService     audit.Service
	lifecycle        *domain.Lifecycle
}

func NewComplaintHandler(complaintService complaint.Service, auditService audit.Service) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		auditService:     auditService,
		lifecycle:        domain.NewLifecycle(domain.ComplaintPolicy),
	}
}

func (h *ComplaintHandler) Create(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var input domain.CreateComplaintInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	found, err := h.complaintService.Create(c.Context(), actor, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(found)
}

// List supports ?status=, ?unclaimed=true and ?mine=true (managed by the
// caller).
func (h *ComplaintHandler) List(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	status, err := statusQuery(c, h.lifecycle)
	if err != nil {
		return err
	}

	filter := domain.ComplaintFilter{
		Status:    status,
		Unclaimed: c.QueryBool("unclaimed", false),
	}
	if c.QueryBool("mine", false) {
		filter.ManagedBy = &actor.UserID
	}

	result, err := h.complaintService.List(c.Context(), actor, filter, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ComplaintHandler) Get(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "complaint")
	if err != nil {
		return err
	}

	found, err := h.complaintService.Get(c.Context(), actor, id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(found)
}

func (h *ComplaintHandler) Claim(c *fiber.Ctx) error {
	return h.transition(c, h.complaintService.Claim)
}

func (h *ComplaintHandler) Revert(c *fiber.Ctx) error {
	return h.transition(c, h.complaintService.Revert)
}

func (h *ComplaintHandler) Drop(c *fiber.Ctx) error {
	return h.transition(c, h.complaintService.Drop)
}

func (h *ComplaintHandler) UpdateStatus(c *fiber.Ctx) error {
	var input domain.UpdateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return err
	}

	return h.transition(c, func(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error) {
		return h.complaintService.UpdateStatus(ctx, actor, id, input.Status, meta)
	})
}

type complaintMove func(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error)

func (h *ComplaintHandler) transition(c *fiber.Ctx, move complaintMove) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "complaint")
	if err != nil {
		return err
	}

	found, err := move(c.Context(), actor, id, middleware.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(found)
}

func (h *ComplaintHandler) History(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "complaint")
	if err != nil {
		return err
	}

	if _, err := h.complaintService.Get(c.Context(), actor, id); err != nil {
		return err
	}

	result, err := h.auditService.History(c.Context(), actor, complaintEntity, id, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
