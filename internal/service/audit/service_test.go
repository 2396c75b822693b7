package audit_test

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
	"asrama/internal/service/audit"
)

func TestAuditService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Repository failure is not returned", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		svc := audit.NewService(repo, logrus.New())
		entry := domain.NewStatusAudit(uuid.New(), domain.AuditAdvanceStatus, "MAINTENANCE", uuid.New(), domain.StatusSubmitted, domain.StatusReviewed, nil)

		repo.On("Create", ctx, entry).Return(errors.New("db down")).Once()

		svc.Record(ctx, entry)
		repo.AssertExpectations(t)
	})

	t.Run("Nil entry", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		audit.NewService(repo, logrus.New()).Record(ctx, nil)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuditService_GetRecentActivities(t *testing.T) {
	ctx := context.Background()
	dormID := uuid.New()

	t.Run("Staff scoped to dorm", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		repo.On("List", ctx, &dormID, domain.PaginationParams{Page: 1, PageSize: 10}).
			Return([]domain.AuditLog{{ID: uuid.New()}}, int64(1), nil)

		logs, err := audit.NewService(repo, logrus.New()).
			GetRecentActivities(ctx, domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &dormID}, 10)

		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})

	t.Run("Admin sees all", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		repo.On("List", ctx, (*uuid.UUID)(nil), domain.PaginationParams{Page: 1, PageSize: 5}).
			Return([]domain.AuditLog{}, int64(0), nil)

		_, err := audit.NewService(repo, logrus.New()).
			GetRecentActivities(ctx, domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, 5)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Anonymous complaint author hidden", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		name := "Rina"
		resident := uuid.New()
		repo.On("List", ctx, &dormID, domain.PaginationParams{Page: 1, PageSize: 10}).
			Return([]domain.AuditLog{{ID: uuid.New(), UserID: resident, UserName: &name, Action: domain.AuditDrop, EntityType: "COMPLAINT", AnonymousActor: true}}, int64(1), nil)

		logs, err := audit.NewService(repo, logrus.New()).
			GetRecentActivities(ctx, domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &dormID}, 10)

		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, uuid.Nil, logs[0].UserID)
		assert.Nil(t, logs[0].UserName)
	})

	t.Run("Students are rejected", func(t *testing.T) {
		_, err := audit.NewService(new(mocks.AuditLogRepository), logrus.New()).
			GetRecentActivities(ctx, domain.Actor{UserID: uuid.New(), Role: domain.RoleStudent}, 5)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})
}

func TestAuditService_History(t *testing.T) {
	ctx := context.Background()
	complaintID := uuid.New()
	resident := uuid.New()
	staff := uuid.New()
	residentName, staffName := "Rina", "Warden"
	params := domain.PaginationParams{Page: 1, PageSize: 20}

	entries := func() []domain.AuditLog {
		return []domain.AuditLog{
			{ID: uuid.New(), UserID: staff, UserName: &staffName, Action: domain.AuditClaim, EntityType: "COMPLAINT", EntityID: complaintID},
			{ID: uuid.New(), UserID: resident, UserName: &residentName, Action: domain.AuditDrop, EntityType: "COMPLAINT", EntityID: complaintID, AnonymousActor: true},
		}
	}

	t.Run("Staff do not see who dropped an anonymous complaint", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		repo.On("ListByEntity", ctx, "COMPLAINT", complaintID, params).Return(entries(), int64(2), nil)

		page, err := audit.NewService(repo, logrus.New()).
			History(ctx, domain.Actor{UserID: staff, Role: domain.RoleStaff}, "COMPLAINT", complaintID, params)

		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		assert.Equal(t, staff, page.Data[0].UserID)
		assert.Equal(t, uuid.Nil, page.Data[1].UserID)
		assert.Nil(t, page.Data[1].UserName)
	})

	t.Run("The resident still sees their own entries", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		repo.On("ListByEntity", ctx, "COMPLAINT", complaintID, params).Return(entries(), int64(2), nil)

		page, err := audit.NewService(repo, logrus.New()).
			History(ctx, domain.Actor{UserID: resident, Role: domain.RoleStudent}, "COMPLAINT", complaintID, params)

		require.NoError(t, err)
		assert.Equal(t, resident, page.Data[1].UserID)
		assert.Equal(t, &residentName, page.Data[1].UserName)
	})
}
