package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/pkg/metrics"
	"asrama/internal/pkg/validate"
	"asrama/internal/repository"
	"asrama/internal/service/audit"
	"asrama/internal/service/dashboard"
	"asrama/internal/service/notification"
)

const entityType = "MAINTENANCE"

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateMaintenanceInput) (*domain.MaintenanceRequest, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error)
	ViewAndAutoReview(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.MaintenanceRequest, error)
	List(ctx context.Context, actor domain.Actor, status *domain.RequestStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.MaintenanceRequest], error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, target domain.RequestStatus, meta *domain.RequestMeta) (*domain.MaintenanceRequest, error)
	Revert(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.MaintenanceRequest, error)
	UpdateBody(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateMaintenanceInput) (*domain.MaintenanceRequest, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type service struct {
	requestRepo    repository.MaintenanceRepository
	assignmentRepo repository.AssignmentRepository
	attachmentRepo repository.AttachmentRepository
	lifecycle      *domain.Lifecycle
	audit          audit.Recorder
	notifier       notification.Notifier
	cache          dashboard.Invalidator
	log            *logrus.Entry
}

func NewService(
	requestRepo repository.MaintenanceRepository,
	assignmentRepo repository.AssignmentRepository,
	attachmentRepo repository.AttachmentRepository,
	auditRecorder audit.Recorder,
	notifier notification.Notifier,
	cache dashboard.Invalidator,
	logger *logrus.Logger,
) Service {
	return &service{
		requestRepo:    requestRepo,
		assignmentRepo: assignmentRepo,
		attachmentRepo: attachmentRepo,
		lifecycle:      domain.NewLifecycle(domain.MaintenancePolicy),
		audit:          auditRecorder,
		notifier:       notifier,
		cache:          cache,
		log:            logrus.NewEntry(logger).WithField("component", "maintenance"),
	}
}

// Create files a request for the room the resident currently occupies. The
// dorm, block and room are copied so later moves do not rewrite history.
func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateMaintenanceInput) (*domain.MaintenanceRequest, error) {
	if !actor.IsStudent() {
		return nil, domain.ErrNotAuthorized
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	placement, err := s.assignmentRepo.GetPlacement(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("resident", "has no active room assignment")
		}
		return nil, err
	}

	req := &domain.MaintenanceRequest{
		ID:          uuid.New(),
		ResidentID:  actor.UserID,
		DormID:      placement.DormID,
		BlockID:     placement.BlockID,
		RoomID:      placement.RoomID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusSubmitted,
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create maintenance request: %w", err)
	}

	s.cache.Invalidate(ctx, req.DormID)
	return req, nil
}

// Get loads a request the actor may see without any side effect.
func (s *service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, req) {
		return nil, domain.ErrNotAuthorized
	}

	attachments, err := s.attachmentRepo.ListByRequest(ctx, domain.KindMaintenance, req.ID)
	if err != nil {
		return nil, err
	}
	req.Attachments = attachments
	return req, nil
}

// ViewAndAutoReview is the staff detail view: opening a submitted request
// marks it reviewed by the viewer. Students only read.
func (s *service) ViewAndAutoReview(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.MaintenanceRequest, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() || req.Status != domain.StatusSubmitted {
		return req, nil
	}

	if err := s.lifecycle.Advance(req, domain.StatusReviewed, actor.UserID); err != nil {
		return nil, err
	}

	err = s.requestRepo.UpdateLifecycle(ctx, req, domain.StatusSubmitted)
	metrics.RecordTransition("maintenance", "auto_review", err)
	if err != nil {
		var tErr *domain.TransitionError
		if errors.As(err, &tErr) {
			// Someone else moved it first; show the stored state.
			return s.Get(ctx, actor, id)
		}
		return nil, err
	}

	s.afterTransition(ctx, actor, req, domain.AuditAutoReview, domain.StatusSubmitted, meta)
	return req, nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, status *domain.RequestStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.MaintenanceRequest], error) {
	params.Normalize()

	filter := domain.MaintenanceFilter{Status: status}
	switch actor.Role {
	case domain.RoleStudent:
		filter.ResidentID = &actor.UserID
	case domain.RoleStaff:
		if actor.DormID == nil {
			return domain.PaginatedResponse[domain.MaintenanceRequest]{}, domain.ErrNotAuthorized
		}
		filter.DormID = actor.DormID
	case domain.RoleAdmin:
	default:
		return domain.PaginatedResponse[domain.MaintenanceRequest]{}, domain.ErrNotAuthorized
	}

	requests, total, err := s.requestRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.MaintenanceRequest]{}, err
	}
	return domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total), nil
}

func (s *service) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, target domain.RequestStatus, meta *domain.RequestMeta) (*domain.MaintenanceRequest, error) {
	req, err := s.loadForStaff(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := req.Status
	err = s.lifecycle.Advance(req, target, actor.UserID)
	if err == nil {
		err = s.requestRepo.UpdateLifecycle(ctx, req, from)
	}
	metrics.RecordTransition("maintenance", "advance", err)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, actor, req, domain.AuditAdvanceStatus, from, meta)
	return req, nil
}

func (s *service) Revert(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.MaintenanceRequest, error) {
	req, err := s.loadForStaff(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := req.Status
	_, err = s.lifecycle.Revert(req, actor.UserID)
	if err == nil {
		err = s.requestRepo.UpdateLifecycle(ctx, req, from)
	}
	metrics.RecordTransition("maintenance", "revert", err)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, actor, req, domain.AuditRevertStatus, from, meta)
	return req, nil
}

func (s *service) UpdateBody(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateMaintenanceInput) (*domain.MaintenanceRequest, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ResidentID != actor.UserID {
		return nil, domain.ErrNotAuthorized
	}
	if s.lifecycle.IsClosed(req.Status) {
		return nil, domain.ErrRequestClosed
	}

	if input.Title != nil {
		req.Title = *input.Title
	}
	if input.Description != nil {
		req.Description = *input.Description
	}

	if err := s.requestRepo.UpdateContent(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Delete soft-deletes the resident's own request while nobody has acted on it.
func (s *service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.ResidentID != actor.UserID {
		return domain.ErrNotAuthorized
	}
	if req.Status != domain.StatusSubmitted {
		return domain.ErrRequestClosed
	}

	if err := s.requestRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, req.DormID)
	return nil
}

func (s *service) loadForStaff(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.InDormScope(req.DormID) {
		return nil, domain.ErrNotAuthorized
	}
	return req, nil
}

func (s *service) afterTransition(ctx context.Context, actor domain.Actor, req *domain.MaintenanceRequest, action string, from domain.RequestStatus, meta *domain.RequestMeta) {
	s.audit.Record(ctx, domain.NewStatusAudit(actor.UserID, action, entityType, req.ID, from, req.Status, meta))

	s.notifier.Notify(ctx, req.ResidentID, domain.NotifMaintenanceStatus, map[string]string{
		"request_id": req.ID.String(),
		"from":       string(from),
		"status":     string(req.Status),
		"message":    fmt.Sprintf("Your maintenance request %q is now %s", req.Title, req.Status),
	})

	s.cache.Invalidate(ctx, req.DormID)

	s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"actor_id":   actor.UserID,
		"from":       from,
		"to":         req.Status,
	}).Debug("maintenance status changed")
}

func canView(actor domain.Actor, req *domain.MaintenanceRequest) bool {
	if actor.IsStudent() {
		return req.ResidentID == actor.UserID
	}
	return actor.InDormScope(req.DormID)
}
