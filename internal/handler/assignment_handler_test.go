package handler_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"asrama/internal/domain"
	"asrama/internal/handler"
	"asrama/internal/middleware"
)

type assignmentService struct {
	mock.Mock
}

func (m *assignmentService) AssignOne(ctx context.Context, actor domain.Actor, input domain.AssignInput, meta *domain.RequestMeta) (*domain.Assignment, error) {
	args := m.Called(actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *assignmentService) AssignBulk(ctx context.Context, actor domain.Actor, input domain.BulkAssignInput, meta *domain.RequestMeta) ([]domain.Assignment, error) {
	args := m.Called(actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func (m *assignmentService) Revoke(ctx context.Context, actor domain.Actor, residentID uuid.UUID, meta *domain.RequestMeta) (*domain.Assignment, error) {
	args := m.Called(actor, residentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *assignmentService) Current(ctx context.Context, actor domain.Actor, residentID uuid.UUID) (*domain.Assignment, error) {
	args := m.Called(actor, residentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *assignmentService) ListByRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) ([]domain.Assignment, error) {
	args := m.Called(actor, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func newAssignmentApp(svc *assignmentService, actor domain.Actor) *fiber.App {
	h := handler.NewAssignmentHandler(svc)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(logrus.New())})
	app.Use(middleware.RequestInfo())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.ActorContextKey, actor)
		return c.Next()
	})
	app.Post("/assignments/bulk", h.AssignBulk)
	app.Post("/assignments/revoke", h.Revoke)
	app.Get("/assignments/residents/:id", h.Current)
	return app
}

func staffActor() domain.Actor {
	dorm := uuid.New()
	return domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &dorm}
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, middleware.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out middleware.ErrorResponse
	if resp.StatusCode >= 400 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestAssignBulk_InsufficientCapacity(t *testing.T) {
	svc := new(assignmentService)
	actor := staffActor()
	app := newAssignmentApp(svc, actor)

	svc.On("AssignBulk", actor, mock.AnythingOfType("domain.BulkAssignInput")).
		Return(nil, &domain.InsufficientCapacityError{Available: 1, Requested: 2})

	body := `{"resident_ids":["` + uuid.NewString() + `","` + uuid.NewString() + `"],"room_id":"` + uuid.NewString() + `","check_in":"2026-08-01T00:00:00Z"}`
	status, out := doJSON(t, app, fiber.MethodPost, "/assignments/bulk", body)

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_CAPACITY", out.Code)
	assert.EqualValues(t, 1, out.Details["available"])
	assert.EqualValues(t, 2, out.Details["requested"])
	svc.AssertExpectations(t)
}

func TestAssignBulk_BadBody(t *testing.T) {
	svc := new(assignmentService)
	app := newAssignmentApp(svc, staffActor())

	status, out := doJSON(t, app, fiber.MethodPost, "/assignments/bulk", `{"resident_ids":`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", out.Code)
	svc.AssertNotCalled(t, "AssignBulk", mock.Anything, mock.Anything)
}

func TestRevoke(t *testing.T) {
	t.Run("no active assignment is a no-op", func(t *testing.T) {
		svc := new(assignmentService)
		actor := staffActor()
		app := newAssignmentApp(svc, actor)
		resident := uuid.New()

		svc.On("Revoke", actor, resident).Return(nil, nil)

		status, _ := doJSON(t, app, fiber.MethodPost, "/assignments/revoke", `{"resident_id":"`+resident.String()+`"}`)
		assert.Equal(t, fiber.StatusNoContent, status)
	})

	t.Run("missing resident fails validation", func(t *testing.T) {
		svc := new(assignmentService)
		app := newAssignmentApp(svc, staffActor())

		status, out := doJSON(t, app, fiber.MethodPost, "/assignments/revoke", `{}`)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "VALIDATION_ERROR", out.Code)
		assert.Equal(t, "resident_id", out.Field)
	})
}

func TestCurrent_InvalidID(t *testing.T) {
	svc := new(assignmentService)
	app := newAssignmentApp(svc, staffActor())

	status, out := doJSON(t, app, fiber.MethodGet, "/assignments/residents/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid resident ID", out.Message)
}
