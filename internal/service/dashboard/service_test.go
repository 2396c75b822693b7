package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asrama/internal/domain"
	"asrama/internal/mocks"
	"asrama/internal/service/dashboard"
)

func TestDashboardService_GetStats(t *testing.T) {
	ctx := context.Background()
	dormID := uuid.New()

	newService := func() (dashboard.Service, *mocks.MaintenanceRepository, *mocks.ComplaintRepository, *mocks.RoomRepository) {
		mRepo := new(mocks.MaintenanceRepository)
		cRepo := new(mocks.ComplaintRepository)
		rRepo := new(mocks.RoomRepository)
		return dashboard.NewService(mRepo, cRepo, rRepo, nil, 0, logrus.New()), mRepo, cRepo, rRepo
	}

	t.Run("Staff sees own dorm", func(t *testing.T) {
		svc, mRepo, cRepo, rRepo := newService()
		staff := domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &dormID}

		mRepo.On("CountByStatus", ctx, dormID).Return(map[domain.RequestStatus]int64{domain.StatusSubmitted: 2}, nil).Once()
		cRepo.On("CountByStatus", ctx, dormID).Return(map[domain.RequestStatus]int64{domain.StatusResolved: 1}, nil).Once()
		rRepo.On("ListOccupancyByDorm", ctx, dormID).Return([]domain.RoomOccupancy{
			{RoomID: uuid.New(), Number: "A-101", Capacity: 2, Occupied: 1},
			{RoomID: uuid.New(), Number: "A-102", Capacity: 3, Occupied: 3},
		}, nil).Once()

		stats, err := svc.GetStats(ctx, staff, nil)

		require.NoError(t, err)
		assert.Equal(t, dormID, stats.DormID)
		assert.Equal(t, int64(2), stats.Maintenance[domain.StatusSubmitted])
		assert.Equal(t, 5, stats.Capacity)
		assert.Equal(t, 4, stats.Occupied)
		assert.Equal(t, 1, stats.Rooms[0].Available)
		assert.Equal(t, 0, stats.Rooms[1].Available)
	})

	t.Run("Staff of another dorm is rejected", func(t *testing.T) {
		svc, _, _, _ := newService()
		other := uuid.New()
		staff := domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &other}

		_, err := svc.GetStats(ctx, staff, &dormID)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Admin without dorm must pick one", func(t *testing.T) {
		svc, _, _, _ := newService()
		admin := domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}

		_, err := svc.GetStats(ctx, admin, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Student is rejected", func(t *testing.T) {
		svc, _, _, _ := newService()
		student := domain.Actor{UserID: uuid.New(), Role: domain.RoleStudent, DormID: &dormID}

		_, err := svc.GetStats(ctx, student, nil)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Repository error propagates", func(t *testing.T) {
		svc, mRepo, _, _ := newService()
		admin := domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}
		mRepo.On("CountByStatus", ctx, dormID).Return(nil, errors.New("db down")).Once()

		_, err := svc.GetStats(ctx, admin, &dormID)
		assert.EqualError(t, err, "db down")
	})
}
