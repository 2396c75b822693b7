package complaint

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const entityType = "COMPLAINT"

// commentPreview bounds the comments embedded in the detail view.
var commentPreview = domain.PaginationParams{Page: 1, PageSize: 100}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateComplaintInput) (*domain.Complaint, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Complaint, error)
	List(ctx context.Context, actor domain.Actor, filter domain.ComplaintFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Complaint], error)
	Claim(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, target domain.RequestStatus, meta *domain.RequestMeta) (*domain.Complaint, error)
	Revert(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error)
	Drop(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error)
}

type service struct {
	complaintRepo  repository.ComplaintRepository
	commentRepo    repository.CommentRepository
	assignmentRepo repository.AssignmentRepository
	lifecycle      *domain.Lifecycle
	audit          audit.Recorder
	notifier       notification.Notifier
	cache          dashboard.Invalidator
	now            func() time.Time
	log            *logrus.Entry
}

func NewService(
	complaintRepo repository.ComplaintRepository,
	commentRepo repository.CommentRepository,
	assignmentRepo repository.AssignmentRepository,
	auditRecorder audit.Recorder,
	notifier notification.Notifier,
	cache dashboard.Invalidator,
	logger *logrus.Logger,
) Service {
	return &service{
		complaintRepo:  complaintRepo,
		commentRepo:    commentRepo,
		assignmentRepo: assignmentRepo,
		lifecycle:      domain.NewLifecycle(domain.ComplaintPolicy),
		audit:          auditRecorder,
		notifier:       notifier,
		cache:          cache,
		now:            time.Now,
		log:            logrus.NewEntry(logger).WithField("component", "complaint"),
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateComplaintInput) (*domain.Complaint, error) {
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

	c := &domain.Complaint{
		ID:          uuid.New(),
		ResidentID:  actor.UserID,
		DormID:      placement.DormID,
		BlockID:     placement.BlockID,
		RoomID:      placement.RoomID,
		Title:       input.Title,
		Body:        input.Body,
		IsAnonymous: input.IsAnonymous,
		Status:      domain.StatusSubmitted,
	}

	if err := s.complaintRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	s.cache.Invalidate(ctx, c.DormID)
	return c, nil
}

// Get returns the complaint with its comments as the actor may see them.
// Any staff member of the dorm may read a complaint so it can be claimed.
func (s *service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Complaint, error) {
	c, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, c) {
		return nil, domain.ErrNotAuthorized
	}

	comments, _, err := s.commentRepo.ListByRequest(ctx, domain.KindComplaint, c.ID, commentPreview)
	if err != nil {
		return nil, err
	}
	c.Comments = domain.MaskForViewer(comments, c, actor)

	return project(c, actor), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter domain.ComplaintFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Complaint], error) {
	params.Normalize()

	switch actor.Role {
	case domain.RoleStudent:
		filter = domain.ComplaintFilter{ResidentID: &actor.UserID, Status: filter.Status}
	case domain.RoleStaff:
		if actor.DormID == nil {
			return domain.PaginatedResponse[domain.Complaint]{}, domain.ErrNotAuthorized
		}
		filter.ResidentID = nil
		filter.DormID = actor.DormID
	case domain.RoleAdmin:
		filter.ResidentID = nil
	default:
		return domain.PaginatedResponse[domain.Complaint]{}, domain.ErrNotAuthorized
	}

	complaints, total, err := s.complaintRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Complaint]{}, err
	}
	for i := range complaints {
		complaints[i] = *project(&complaints[i], actor)
	}
	return domain.NewPaginatedResponse(complaints, params.Page, params.PageSize, total), nil
}

// Claim makes actor the sole manager. Claiming again by the same staff
// member is a no-op; a complaint managed by someone else is left untouched.
// A submitted complaint is reviewed in the same write.
func (s *service) Claim(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error) {
	c, err := s.claim(ctx, actor, id, meta)
	metrics.RecordClaim(err)
	return c, err
}

func (s *service) claim(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}

	c, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.InDormScope(c.DormID) {
		return nil, domain.ErrNotAuthorized
	}
	if c.IsManagedBy(actor.UserID) {
		return c, nil
	}
	if c.ManagedBy != nil {
		return nil, domain.ErrAlreadyClaimed
	}
	if s.lifecycle.IsClosed(c.Status) {
		return nil, domain.ErrRequestClosed
	}

	from := c.Status
	now := s.now()
	manager := actor.UserID
	c.ManagedBy = &manager
	c.ClaimedAt = &now
	if from == domain.StatusSubmitted {
		if err := s.lifecycle.Advance(c, domain.StatusReviewed, actor.UserID); err != nil {
			return nil, err
		}
	}

	won, err := s.complaintRepo.Claim(ctx, c, from)
	if err != nil {
		return nil, err
	}
	if !won {
		return s.resolveLostClaim(ctx, actor, id, from)
	}

	s.audit.Record(ctx, domain.NewStatusAudit(actor.UserID, domain.AuditClaim, entityType, c.ID, from, c.Status, meta))
	s.notifier.Notify(ctx, c.ResidentID, domain.NotifComplaintClaimed, map[string]string{
		"complaint_id": c.ID.String(),
		"status":       string(c.Status),
		"message":      fmt.Sprintf("Your complaint %q is being handled", c.Title),
	})
	s.cache.Invalidate(ctx, c.DormID)

	return c, nil
}

// resolveLostClaim reports the outcome of a claim whose guarded update
// matched no row.
func (s *service) resolveLostClaim(ctx context.Context, actor domain.Actor, id uuid.UUID, from domain.RequestStatus) (*domain.Complaint, error) {
	fresh, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case fresh.IsManagedBy(actor.UserID):
		return fresh, nil
	case fresh.ManagedBy != nil:
		return nil, domain.ErrAlreadyClaimed
	default:
		return nil, &domain.TransitionError{Kind: domain.ErrInvalidTransition, From: from, To: fresh.Status}
	}
}

func (s *service) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, target domain.RequestStatus, meta *domain.RequestMeta) (*domain.Complaint, error) {
	c, err := s.loadForManager(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := c.Status
	err = s.lifecycle.Advance(c, target, actor.UserID)
	if err == nil {
		err = s.complaintRepo.UpdateLifecycle(ctx, c, from)
	}
	metrics.RecordTransition("complaint", "advance", err)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, actor, c, domain.AuditAdvanceStatus, from, c.ResidentID, meta)
	return c, nil
}

func (s *service) Revert(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error) {
	c, err := s.loadForManager(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := c.Status
	_, err = s.lifecycle.Revert(c, actor.UserID)
	if err == nil {
		err = s.complaintRepo.UpdateLifecycle(ctx, c, from)
	}
	metrics.RecordTransition("complaint", "revert", err)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, actor, c, domain.AuditRevertStatus, from, c.ResidentID, meta)
	return c, nil
}

// Drop withdraws the complaint. Only the resident who filed it may drop it.
func (s *service) Drop(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *domain.RequestMeta) (*domain.Complaint, error) {
	c, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ResidentID != actor.UserID {
		return nil, domain.ErrNotAuthorized
	}

	from := c.Status
	err = s.lifecycle.Drop(c)
	if err == nil {
		err = s.complaintRepo.UpdateLifecycle(ctx, c, from)
	}
	metrics.RecordTransition("complaint", "drop", err)
	if err != nil {
		return nil, err
	}

	var recipient uuid.UUID
	if c.ManagedBy != nil {
		recipient = *c.ManagedBy
	}
	s.afterTransition(ctx, actor, c, domain.AuditDrop, from, recipient, meta)
	return c, nil
}

// loadForManager enforces the claim gate: only the managing staff member may
// move a complaint, whatever their dorm.
func (s *service) loadForManager(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Complaint, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	c, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsManagedBy(actor.UserID) {
		return nil, domain.ErrNotAuthorized
	}
	return c, nil
}

func (s *service) afterTransition(ctx context.Context, actor domain.Actor, c *domain.Complaint, action string, from domain.RequestStatus, recipient uuid.UUID, meta *domain.RequestMeta) {
	s.audit.Record(ctx, domain.NewStatusAudit(actor.UserID, action, entityType, c.ID, from, c.Status, meta))

	s.notifier.Notify(ctx, recipient, domain.NotifComplaintStatus, map[string]string{
		"complaint_id": c.ID.String(),
		"from":         string(from),
		"status":       string(c.Status),
		"message":      fmt.Sprintf("Complaint %q is now %s", c.Title, c.Status),
	})

	s.cache.Invalidate(ctx, c.DormID)

	s.log.WithFields(logrus.Fields{
		"complaint_id": c.ID,
		"actor_id":     actor.UserID,
		"from":         from,
		"to":           c.Status,
	}).Debug("complaint status changed")
}

func canView(actor domain.Actor, c *domain.Complaint) bool {
	if actor.IsStudent() {
		return c.ResidentID == actor.UserID
	}
	return actor.InDormScope(c.DormID) || c.IsManagedBy(actor.UserID)
}

// project hides the submitter of an anonymous complaint from everyone but
// the submitter.
func project(c *domain.Complaint, viewer domain.Actor) *domain.Complaint {
	if !c.IsAnonymous || viewer.UserID == c.ResidentID {
		return c
	}
	out := *c
	out.ResidentID = uuid.Nil
	return &out
}
