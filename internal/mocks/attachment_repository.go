package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"asrama/internal/domain"
)

type AttachmentRepository struct {
	mock.Mock
}

func (m *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

func (m *AttachmentRepository) ListByRequest(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID) ([]domain.Attachment, error) {
	args := m.Called(ctx, kind, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attachment), args.Error(1)
}

func (m *AttachmentRepository) CountByRequest(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID) (int, error) {
	args := m.Called(ctx, kind, requestID)
	return args.Int(0), args.Error(1)
}

func (m *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
