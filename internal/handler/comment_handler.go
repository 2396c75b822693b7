package handler

import (
	"github.com/gofiber/fiber/v2"

	"asrama/internal/domain"
	"asrama/internal/middleware"
	"asrama/internal/service/comment"
)

type CommentHandler struct {
	commentService comment.Service
}

func NewCommentHandler(commentService comment.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create returns a handler adding a comment to the request of the given
// kind named by the :id route parameter.
func (h *CommentHandler) Create(kind domain.RequestKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.GetActor(c)
		if err != nil {
			return err
		}
		requestID, err := parseID(c, "id", "request")
		if err != nil {
			return err
		}

		var input domain.CreateCommentInput
		if err := c.BodyParser(&input); err != nil {
			return middleware.BadRequest("Invalid request body")
		}

		created, err := h.commentService.Create(c.Context(), actor, kind, requestID, input)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func (h *CommentHandler) List(kind domain.RequestKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.GetActor(c)
		if err != nil {
			return err
		}
		requestID, err := parseID(c, "id", "request")
		if err != nil {
			return err
		}

		result, err := h.commentService.List(c.Context(), actor, kind, requestID, getPaginationParams(c))
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusOK).JSON(result)
	}
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId", "comment")
	if err != nil {
		return err
	}

	var input domain.UpdateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.commentService.Update(c.Context(), actor, commentID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId", "comment")
	if err != nil {
		return err
	}

	if err := h.commentService.Delete(c.Context(), actor, commentID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
