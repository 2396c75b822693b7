package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"asrama/internal/domain"
)

type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, userID uuid.UUID, notifType domain.NotificationType, payload map[string]string) {
	m.Called(ctx, userID, notifType, payload)
}

type CacheInvalidator struct {
	mock.Mock
}

func (m *CacheInvalidator) Invalidate(ctx context.Context, dormID uuid.UUID) {
	m.Called(ctx, dormID)
}

type AuditRecorder struct {
	mock.Mock
}

func (m *AuditRecorder) Record(ctx context.Context, entry *domain.AuditLog) {
	m.Called(ctx, entry)
}
