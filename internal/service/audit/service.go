package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/repository"
)

// Recorder writes audit entries. Failures are logged and never fail the
// operation being audited.
type Recorder interface {
	Record(ctx context.Context, entry *domain.AuditLog)
}

type Service interface {
	Recorder
	GetRecentActivities(ctx context.Context, actor domain.Actor, limit int) ([]domain.AuditLog, error)
	History(ctx context.Context, viewer domain.Actor, entityType string, entityID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error)
}

type service struct {
	auditRepo repository.AuditLogRepository
	log       *logrus.Entry
}

func NewService(auditRepo repository.AuditLogRepository, logger *logrus.Logger) Service {
	return &service{
		auditRepo: auditRepo,
		log:       logrus.NewEntry(logger).WithField("component", "audit"),
	}
}

func (s *service) Record(ctx context.Context, entry *domain.AuditLog) {
	if entry == nil {
		return
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
		}).Error("failed to write audit log")
	}
}

// GetRecentActivities lists the latest entries. Staff only see activity of
// users in their own dorm.
func (s *service) GetRecentActivities(ctx context.Context, actor domain.Actor, limit int) ([]domain.AuditLog, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}

	params := domain.PaginationParams{
		Page:     1,
		PageSize: limit,
	}

	var dormID *uuid.UUID
	if actor.Role != domain.RoleAdmin {
		dormID = actor.DormID
		if dormID == nil {
			return nil, domain.ErrNotAuthorized
		}
	}

	logs, _, err := s.auditRepo.List(ctx, dormID, params)
	if err != nil {
		return nil, err
	}
	return domain.MaskAnonymousActors(logs, actor), nil
}

// History lists the entries of one entity in order. Authors of anonymous
// complaint entries are masked for everyone but themselves.
func (s *service) History(ctx context.Context, viewer domain.Actor, entityType string, entityID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	params.Normalize()

	logs, total, err := s.auditRepo.ListByEntity(ctx, entityType, entityID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditLog]{}, err
	}
	return domain.NewPaginatedResponse(domain.MaskAnonymousActors(logs, viewer), params.Page, params.PageSize, total), nil
}
