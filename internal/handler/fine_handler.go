package handler

import (
	"github.com/gofiber/fiber/v2"

	"asrama/internal/domain"
	"asrama/internal/middleware"
	"asrama/internal/service/fine"
)

type FineHandler struct {
	fineService fine.Service
}

func NewFineHandler(fineService fine.Service) *FineHandler {
	return &FineHandler{fineService: fineService}
}

func (h *FineHandler) Issue(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var input domain.IssueFineInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	issued, err := h.fineService.Issue(c.Context(), actor, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(issued)
}

func (h *FineHandler) List(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var status *domain.FineStatus
	switch s := domain.FineStatus(c.Query("status")); s {
	case "":
	case domain.FineUnpaid, domain.FinePaid, domain.FineWaived:
		status = &s
	default:
		return middleware.BadRequest("Invalid status filter")
	}

	result, err := h.fineService.List(c.Context(), actor, status, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *FineHandler) Get(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "fine")
	if err != nil {
		return err
	}

	found, err := h.fineService.Get(c.Context(), actor, id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(found)
}

func (h *FineHandler) Pay(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "fine")
	if err != nil {
		return err
	}

	paid, err := h.fineService.Pay(c.Context(), actor, id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(paid)
}

func (h *FineHandler) Appeal(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "fine")
	if err != nil {
		return err
	}

	var input domain.AppealFineInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	appealed, err := h.fineService.Appeal(c.Context(), actor, id, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(appealed)
}

func (h *FineHandler) DecideAppeal(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "fine")
	if err != nil {
		return err
	}

	var input domain.DecideAppealInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	decided, err := h.fineService.DecideAppeal(c.Context(), actor, id, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(decided)
}
