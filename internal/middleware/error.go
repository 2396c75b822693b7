package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/pkg/i18n"
	"asrama/internal/service/identity"
)

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	TraceID string         `json:"trace_id,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: typed errors are matched before the sentinels they wrap.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "Resource not found"},
	{domain.ErrNotAuthorized, fiber.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION", "This status change is not allowed"},
	{domain.ErrRevertNotAllowed, fiber.StatusConflict, "REVERT_NOT_ALLOWED", "This request cannot be reverted"},
	{domain.ErrAlreadyClaimed, fiber.StatusConflict, "ALREADY_CLAIMED", "This complaint is handled by another staff member"},
	{domain.ErrCapacityExceeded, fiber.StatusConflict, "CAPACITY_EXCEEDED", "The room is full"},
	{domain.ErrRequestClosed, fiber.StatusConflict, "REQUEST_CLOSED", "This request is closed"},
	{domain.ErrAlreadyAssigned, fiber.StatusConflict, "ALREADY_ASSIGNED", "A resident already has an active room"},
	{domain.ErrFineSettled, fiber.StatusConflict, "FINE_SETTLED", "This fine is no longer unpaid"},
	{domain.ErrAppealNotAllowed, fiber.StatusConflict, "APPEAL_NOT_ALLOWED", "This fine cannot be appealed"},
	{identity.ErrInvalidToken, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token"},
	{identity.ErrInactiveUser, fiber.StatusUnauthorized, "UNAUTHORIZED", "User is inactive"},
}

// NewErrorHandler maps domain errors to a status, a stable code and a message
// in the caller's language. Unknown errors are logged and reported as 500.
func NewErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	log := logrus.NewEntry(logger).WithField("component", "http")

	return func(c *fiber.Ctx, err error) error {
		locale := GetLocale(c)
		traceID := uuid.New().String()[:8]
		resp := ErrorResponse{TraceID: traceID}
		status := fiber.StatusInternalServerError

		var fiberErr *fiber.Error
		var validationErr *domain.ValidationError
		var capacityErr *domain.InsufficientCapacityError

		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			resp.Code = fiberErrorCode(status)
			resp.Message = fiberErr.Message

		case errors.As(err, &validationErr):
			status = fiber.StatusUnprocessableEntity
			resp.Code = "VALIDATION_ERROR"
			resp.Field = validationErr.Field
			resp.Message = translate(locale, resp.Code, validationErr.Error(), validationErr.Field, validationErr.Reason)

		case errors.As(err, &capacityErr):
			status = fiber.StatusConflict
			resp.Code = "INSUFFICIENT_CAPACITY"
			resp.Details = map[string]any{
				"available": capacityErr.Available,
				"requested": capacityErr.Requested,
			}
			resp.Message = translate(locale, resp.Code, capacityErr.Error(), capacityErr.Available, capacityErr.Requested)

		default:
			resp.Code = "INTERNAL_ERROR"
			resp.Message = translate(locale, resp.Code, "Internal server error")
			for _, m := range errorMappings {
				if errors.Is(err, m.target) {
					status = m.status
					resp.Code = m.code
					resp.Message = translate(locale, m.code, m.message)
					break
				}
			}
		}

		if status >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"trace_id": traceID,
				"method":   c.Method(),
				"path":     c.Path(),
			}).Error("request failed")
		}

		return c.Status(status).JSON(resp)
	}
}

// translate returns the catalog message for code, or fallback when the
// catalog has none.
func translate(locale, code, fallback string, args ...any) string {
	msg := i18n.Translate(locale, code, args...)
	if msg == code {
		return fallback
	}
	return msg
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

func NewError(code int, message string) *fiber.Error {
	return fiber.NewError(code, message)
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}
