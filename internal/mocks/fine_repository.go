package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"asrama/internal/domain"
)

type FineRepository struct {
	mock.Mock
}

func (m *FineRepository) Create(ctx context.Context, fine *domain.Fine) error {
	args := m.Called(ctx, fine)
	return args.Error(0)
}

func (m *FineRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fine), args.Error(1)
}

func (m *FineRepository) List(ctx context.Context, filter domain.FineFilter, params domain.PaginationParams) ([]domain.Fine, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Fine), args.Get(1).(int64), args.Error(2)
}

func (m *FineRepository) Update(ctx context.Context, fine *domain.Fine, expected domain.FineStatus) error {
	args := m.Called(ctx, fine, expected)
	return args.Error(0)
}
