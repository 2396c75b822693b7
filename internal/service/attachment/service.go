package attachment

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/pkg/validate"
	"asrama/internal/repository"
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type Limits struct {
	MaxCount int
	MaxBytes int64
}

type Service interface {
	Register(ctx context.Context, actor domain.Actor, requestID uuid.UUID, input domain.RegisterAttachmentInput) (*domain.Attachment, error)
	Remove(ctx context.Context, actor domain.Actor, requestID, attachmentID uuid.UUID) error
}

type service struct {
	attachmentRepo  repository.AttachmentRepository
	maintenanceRepo repository.MaintenanceRepository
	store           ObjectStore
	limits          Limits
	lifecycle       *domain.Lifecycle
	log             *logrus.Entry
}

func NewService(
	attachmentRepo repository.AttachmentRepository,
	maintenanceRepo repository.MaintenanceRepository,
	store ObjectStore,
	limits Limits,
	logger *logrus.Logger,
) Service {
	return &service{
		attachmentRepo:  attachmentRepo,
		maintenanceRepo: maintenanceRepo,
		store:           store,
		limits:          limits,
		lifecycle:       domain.NewLifecycle(domain.MaintenancePolicy),
		log:             logrus.NewEntry(logger).WithField("component", "attachment"),
	}
}

// ObjectPrefix is where a resident's uploads for a request must live.
func ObjectPrefix(residentID, requestID uuid.UUID) string {
	return fmt.Sprintf("maintenance/%s/%s/", residentID, requestID)
}

func (s *service) Register(ctx context.Context, actor domain.Actor, requestID uuid.UUID, input domain.RegisterAttachmentInput) (*domain.Attachment, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	req, err := s.loadOwned(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	key := path.Clean(input.ObjectKey)
	if !strings.HasPrefix(key, ObjectPrefix(actor.UserID, req.ID)) {
		return nil, domain.NewValidationError("object_key", "object does not belong to this request")
	}

	count, err := s.attachmentRepo.CountByRequest(ctx, domain.KindMaintenance, req.ID)
	if err != nil {
		return nil, err
	}
	if count >= s.limits.MaxCount {
		return nil, domain.NewValidationError("attachments", fmt.Sprintf("at most %d attachments per request", s.limits.MaxCount))
	}

	info, err := s.store.Stat(ctx, key)
	if err != nil {
		return nil, err
	}
	if !allowedMimeTypes[info.ContentType] {
		return nil, domain.NewValidationError("object_key", "only jpeg, png and webp images are allowed")
	}
	if info.Size > s.limits.MaxBytes {
		return nil, domain.NewValidationError("object_key", fmt.Sprintf("file exceeds %d bytes", s.limits.MaxBytes))
	}

	a := &domain.Attachment{
		ID:          uuid.New(),
		RequestKind: domain.KindMaintenance,
		RequestID:   req.ID,
		UploadedBy:  actor.UserID,
		ObjectKey:   key,
		FileName:    input.FileName,
		FileSize:    info.Size,
		MimeType:    info.ContentType,
	}
	if err := s.attachmentRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Remove(ctx context.Context, actor domain.Actor, requestID, attachmentID uuid.UUID) error {
	req, err := s.loadOwned(ctx, actor, requestID)
	if err != nil {
		return err
	}

	a, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	if a.RequestKind != domain.KindMaintenance || a.RequestID != req.ID {
		return domain.ErrNotFound
	}

	if err := s.attachmentRepo.Delete(ctx, a.ID); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, a.ObjectKey); err != nil {
		s.log.WithError(err).WithField("object_key", a.ObjectKey).Warn("failed to remove attachment object")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, actor domain.Actor, requestID uuid.UUID) (*domain.MaintenanceRequest, error) {
	req, err := s.maintenanceRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStudent() || req.ResidentID != actor.UserID {
		return nil, domain.ErrNotAuthorized
	}
	if s.lifecycle.IsClosed(req.Status) {
		return nil, domain.ErrRequestClosed
	}
	return req, nil
}
