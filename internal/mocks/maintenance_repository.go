package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"asrama/internal/domain"
)

type MaintenanceRepository struct {
	mock.Mock
}

func (m *MaintenanceRepository) Create(ctx context.Context, req *domain.MaintenanceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceRequest), args.Error(1)
}

func (m *MaintenanceRepository) List(ctx context.Context, filter domain.MaintenanceFilter, params domain.PaginationParams) ([]domain.MaintenanceRequest, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.MaintenanceRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MaintenanceRepository) UpdateLifecycle(ctx context.Context, req *domain.MaintenanceRequest, expected domain.RequestStatus) error {
	args := m.Called(ctx, req, expected)
	return args.Error(0)
}

func (m *MaintenanceRepository) UpdateContent(ctx context.Context, req *domain.MaintenanceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MaintenanceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MaintenanceRepository) CountByStatus(ctx context.Context, dormID uuid.UUID) (map[domain.RequestStatus]int64, error) {
	args := m.Called(ctx, dormID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.RequestStatus]int64), args.Error(1)
}
