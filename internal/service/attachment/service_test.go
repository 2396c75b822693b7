package attachment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"asrama/internal/domain"
	"asrama/internal/mocks"
	"asrama/internal/service/attachment"
)

type objectStore struct {
	mock.Mock
}

func (m *objectStore) Stat(ctx context.Context, key string) (attachment.ObjectInfo, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(attachment.ObjectInfo), args.Error(1)
}

func (m *objectStore) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type fixture struct {
	svc             attachment.Service
	attachmentRepo  *mocks.AttachmentRepository
	maintenanceRepo *mocks.MaintenanceRepository
	store           *objectStore
}

func newFixture() *fixture {
	f := &fixture{
		attachmentRepo:  new(mocks.AttachmentRepository),
		maintenanceRepo: new(mocks.MaintenanceRepository),
		store:           new(objectStore),
	}
	f.svc = attachment.NewService(f.attachmentRepo, f.maintenanceRepo, f.store, attachment.Limits{MaxCount: 2, MaxBytes: 1024}, logrus.New())
	return f
}

func TestAttachmentService_Register(t *testing.T) {
	ctx := context.Background()
	residentID := uuid.New()
	actor := domain.Actor{UserID: residentID, Role: domain.RoleStudent}
	req := &domain.MaintenanceRequest{ID: uuid.New(), ResidentID: residentID, Status: domain.StatusSubmitted}
	key := attachment.ObjectPrefix(residentID, req.ID) + "photo.jpg"
	input := domain.RegisterAttachmentInput{ObjectKey: key, FileName: "photo.jpg"}

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(req, nil)
		f.attachmentRepo.On("CountByRequest", ctx, domain.KindMaintenance, req.ID).Return(1, nil)
		f.store.On("Stat", ctx, key).Return(attachment.ObjectInfo{Size: 512, ContentType: "image/jpeg"}, nil)
		f.attachmentRepo.On("Create", ctx, mock.MatchedBy(func(a *domain.Attachment) bool {
			return a.ObjectKey == key && a.FileSize == 512 && a.UploadedBy == residentID
		})).Return(nil)

		a, err := f.svc.Register(ctx, actor, req.ID, input)

		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", a.MimeType)
	})

	t.Run("Rejects non-image", func(t *testing.T) {
		f := newFixture()
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(req, nil)
		f.attachmentRepo.On("CountByRequest", ctx, domain.KindMaintenance, req.ID).Return(0, nil)
		f.store.On("Stat", ctx, key).Return(attachment.ObjectInfo{Size: 100, ContentType: "application/pdf"}, nil)

		_, err := f.svc.Register(ctx, actor, req.ID, input)

		assert.ErrorIs(t, err, domain.ErrValidation)
		f.attachmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Rejects oversized", func(t *testing.T) {
		f := newFixture()
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(req, nil)
		f.attachmentRepo.On("CountByRequest", ctx, domain.KindMaintenance, req.ID).Return(0, nil)
		f.store.On("Stat", ctx, key).Return(attachment.ObjectInfo{Size: 4096, ContentType: "image/png"}, nil)

		_, err := f.svc.Register(ctx, actor, req.ID, input)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Rejects when limit reached", func(t *testing.T) {
		f := newFixture()
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(req, nil)
		f.attachmentRepo.On("CountByRequest", ctx, domain.KindMaintenance, req.ID).Return(2, nil)

		_, err := f.svc.Register(ctx, actor, req.ID, input)

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "attachments", verr.Field)
		f.store.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
	})

	t.Run("Rejects foreign object key", func(t *testing.T) {
		f := newFixture()
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(req, nil)

		_, err := f.svc.Register(ctx, actor, req.ID, domain.RegisterAttachmentInput{
			ObjectKey: attachment.ObjectPrefix(residentID, req.ID) + "../../other/x.jpg",
			FileName:  "x.jpg",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Closed request", func(t *testing.T) {
		f := newFixture()
		closed := *req
		closed.Status = domain.StatusCompleted
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(&closed, nil)

		_, err := f.svc.Register(ctx, actor, req.ID, input)
		assert.ErrorIs(t, err, domain.ErrRequestClosed)
	})

	t.Run("Not the owner", func(t *testing.T) {
		f := newFixture()
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(req, nil)

		_, err := f.svc.Register(ctx, domain.Actor{UserID: uuid.New(), Role: domain.RoleStudent}, req.ID, input)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})
}

func TestAttachmentService_Remove(t *testing.T) {
	ctx := context.Background()
	residentID := uuid.New()
	actor := domain.Actor{UserID: residentID, Role: domain.RoleStudent}
	req := &domain.MaintenanceRequest{ID: uuid.New(), ResidentID: residentID, Status: domain.StatusReviewed}
	a := &domain.Attachment{ID: uuid.New(), RequestKind: domain.KindMaintenance, RequestID: req.ID, ObjectKey: "k"}

	t.Run("Deletes metadata and object", func(t *testing.T) {
		f := newFixture()
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(req, nil)
		f.attachmentRepo.On("GetByID", ctx, a.ID).Return(a, nil)
		f.attachmentRepo.On("Delete", ctx, a.ID).Return(nil)
		f.store.On("Remove", ctx, "k").Return(errors.New("unreachable"))

		require.NoError(t, f.svc.Remove(ctx, actor, req.ID, a.ID))
		f.store.AssertExpectations(t)
	})

	t.Run("Attachment of another request", func(t *testing.T) {
		f := newFixture()
		f.maintenanceRepo.On("GetByID", ctx, req.ID).Return(req, nil)
		other := *a
		other.RequestID = uuid.New()
		f.attachmentRepo.On("GetByID", ctx, a.ID).Return(&other, nil)

		err := f.svc.Remove(ctx, actor, req.ID, a.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
