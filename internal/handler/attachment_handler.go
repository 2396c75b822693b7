package handler

import (
	"github.com/gofiber/fiber/v2"

	"asrama/internal/domain"
	"asrama/internal/middleware"
	"asrama/internal/service/attachment"
)

type AttachmentHandler struct {
	attachmentService attachment.Service
}

func NewAttachmentHandler(attachmentService attachment.Service) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

func (h *AttachmentHandler) Register(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	requestID, err := parseID(c, "id", "request")
	if err != nil {
		return err
	}

	var input domain.RegisterAttachmentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	a, err := h.attachmentService.Register(c.Context(), actor, requestID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *AttachmentHandler) Remove(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	requestID, err := parseID(c, "id", "request")
	if err != nil {
		return err
	}
	attachmentID, err := parseID(c, "attachmentId", "attachment")
	if err != nil {
		return err
	}

	if err := h.attachmentService.Remove(c.Context(), actor, requestID, attachmentID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
