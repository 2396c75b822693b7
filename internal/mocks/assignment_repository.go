package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"asrama/internal/domain"
	"asrama/internal/repository"
)

// AssignmentRepository mocks the non-locking queries. AllocateLocked calls
// the allocate function with the configured RoomLock when one is returned,
// so service logic under the lock still runs.
type AssignmentRepository struct {
	mock.Mock
}

func (m *AssignmentRepository) GetActiveByResident(ctx context.Context, residentID uuid.UUID) (*domain.Assignment, error) {
	args := m.Called(ctx, residentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *AssignmentRepository) ListActiveResidents(ctx context.Context, residentIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, residentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *AssignmentRepository) GetPlacement(ctx context.Context, residentID uuid.UUID) (*domain.ResidentPlacement, error) {
	args := m.Called(ctx, residentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResidentPlacement), args.Error(1)
}

func (m *AssignmentRepository) ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Assignment, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func (m *AssignmentRepository) AllocateLocked(ctx context.Context, roomID uuid.UUID, fn repository.AllocateFunc) ([]domain.Assignment, error) {
	args := m.Called(ctx, roomID, fn)
	if lock, ok := args.Get(0).(repository.RoomLock); ok {
		return fn(lock)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func (m *AssignmentRepository) Revoke(ctx context.Context, id, revokedBy uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, revokedBy)
	return args.Bool(0), args.Error(1)
}
