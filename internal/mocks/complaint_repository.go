package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"asrama/internal/domain"
)

type ComplaintRepository struct {
	mock.Mock
}

func (m *ComplaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ComplaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintRepository) List(ctx context.Context, filter domain.ComplaintFilter, params domain.PaginationParams) ([]domain.Complaint, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Complaint), args.Get(1).(int64), args.Error(2)
}

func (m *ComplaintRepository) UpdateLifecycle(ctx context.Context, c *domain.Complaint, expected domain.RequestStatus) error {
	args := m.Called(ctx, c, expected)
	return args.Error(0)
}

func (m *ComplaintRepository) Claim(ctx context.Context, c *domain.Complaint, expected domain.RequestStatus) (bool, error) {
	args := m.Called(ctx, c, expected)
	return args.Bool(0), args.Error(1)
}

func (m *ComplaintRepository) CountByStatus(ctx context.Context, dormID uuid.UUID) (map[domain.RequestStatus]int64, error) {
	args := m.Called(ctx, dormID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.RequestStatus]int64), args.Error(1)
}
