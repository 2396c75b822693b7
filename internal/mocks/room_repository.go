package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"asrama/internal/domain"
)

type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *RoomRepository) ListOccupancyByDorm(ctx context.Context, dormID uuid.UUID) ([]domain.RoomOccupancy, error) {
	args := m.Called(ctx, dormID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoomOccupancy), args.Error(1)
}
