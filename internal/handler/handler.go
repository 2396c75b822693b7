package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"asrama/internal/domain"
	"asrama/internal/middleware"
	"asrama/internal/service"
)

type Handlers struct {
	Maintenance  *MaintenanceHandler
	Complaint    *ComplaintHandler
	Comment      *CommentHandler
	Attachment   *AttachmentHandler
	Assignment   *AssignmentHandler
	Fine         *FineHandler
	Audit        *AuditHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Maintenance:  NewMaintenanceHandler(services.Maintenance, services.Audit),
		Complaint:    NewComplaintHandler(services.Complaint, services.Audit),
		Comment:      NewCommentHandler(services.Comment),
		Attachment:   NewAttachmentHandler(services.Attachment),
		Assignment:   NewAssignmentHandler(services.Assignment),
		Fine:         NewFineHandler(services.Fine),
		Audit:        NewAuditHandler(services.Audit),
		Notification: NewNotificationHandler(services.Notification),
		Dashboard:    NewDashboardHandler(services.Dashboard),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Normalize()
	return params
}

func parseID(c *fiber.Ctx, param, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}

// statusQuery reads an optional ?status= filter and checks it against the
// lifecycle the listed requests follow.
func statusQuery(c *fiber.Ctx, lifecycle *domain.Lifecycle) (*domain.RequestStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	status := domain.RequestStatus(raw)
	if !lifecycle.IsValid(status) {
		return nil, middleware.BadRequest("Invalid status filter")
	}
	return &status, nil
}
