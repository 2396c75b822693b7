package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asrama/internal/domain"
)

func TestMaintenanceUpdateLifecycle(t *testing.T) {
	t.Run("applies while status matches", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMaintenanceRepository(db)
		now := time.Now()
		staff := uuid.New()
		req := &domain.MaintenanceRequest{ID: uuid.New(), Status: domain.StatusReviewed, ReviewedAt: &now, ReviewedBy: &staff}

		mock.ExpectQuery(`UPDATE maintenance_requests SET status = \$3`).
			WithArgs(req.ID.String(), string(domain.StatusSubmitted), string(domain.StatusReviewed),
				sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil, nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		require.NoError(t, repo.UpdateLifecycle(context.Background(), req, domain.StatusSubmitted))
		assert.WithinDuration(t, now, req.UpdatedAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale status is an invalid transition", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMaintenanceRepository(db)
		req := &domain.MaintenanceRequest{ID: uuid.New(), Status: domain.StatusInProgress}

		mock.ExpectQuery(`UPDATE maintenance_requests`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		err := repo.UpdateLifecycle(context.Background(), req, domain.StatusReviewed)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		var te *domain.TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, domain.StatusReviewed, te.From)
		assert.Equal(t, domain.StatusInProgress, te.To)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestComplaintClaim(t *testing.T) {
	claim := func() *domain.Complaint {
		now := time.Now()
		staff := uuid.New()
		return &domain.Complaint{
			ID:         uuid.New(),
			ManagedBy:  &staff,
			ClaimedAt:  &now,
			Status:     domain.StatusReviewed,
			ReviewedAt: &now,
			ReviewedBy: &staff,
		}
	}

	t.Run("first claimer wins", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewComplaintRepository(db)
		c := claim()

		mock.ExpectQuery(`UPDATE complaints (.+) WHERE id = \$1 AND status = \$2 AND managed_by IS NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

		ok, err := repo.Claim(context.Background(), c, domain.StatusSubmitted)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already claimed reports false", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewComplaintRepository(db)

		mock.ExpectQuery(`UPDATE complaints`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		ok, err := repo.Claim(context.Background(), claim(), domain.StatusSubmitted)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFineUpdate(t *testing.T) {
	t.Run("guarded by status and version", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewFineRepository(db)
		version := time.Now().Add(-time.Minute)
		paidAt := time.Now()
		fine := &domain.Fine{ID: uuid.New(), Status: domain.FinePaid, PaidAt: &paidAt, UpdatedAt: version}

		mock.ExpectQuery(`UPDATE fines (.+) WHERE id = \$1 AND status = \$10 AND updated_at = \$11`).
			WithArgs(fine.ID.String(), string(domain.FinePaid), sqlmock.AnyArg(),
				nil, nil, nil, nil, nil, nil,
				string(domain.FineUnpaid), version).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(paidAt))

		require.NoError(t, repo.Update(context.Background(), fine, domain.FineUnpaid))
		assert.WithinDuration(t, paidAt, fine.UpdatedAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent change is settled", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewFineRepository(db)

		mock.ExpectQuery(`UPDATE fines`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		err := repo.Update(context.Background(), &domain.Fine{ID: uuid.New(), Status: domain.FineWaived}, domain.FineUnpaid)
		assert.ErrorIs(t, err, domain.ErrFineSettled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNotificationMarkAsRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)
	userID, id := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE notifications SET is_read = true`).WithArgs(id.String(), userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE notifications SET is_read = true`).WithArgs(id.String(), userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkAsRead(context.Background(), userID, id))
	assert.ErrorIs(t, repo.MarkAsRead(context.Background(), userID, id), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditListByEntity_FlagsAnonymousAuthor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditLogRepository(db)
	complaintID, resident := uuid.New(), uuid.New()
	params := domain.PaginationParams{Page: 1, PageSize: 20}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_logs`).
		WithArgs("COMPLAINT", complaintID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`LEFT JOIN complaints c ON al.entity_type = 'COMPLAINT' AND c.id = al.entity_id`).
		WithArgs("COMPLAINT", complaintID.String(), 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "action", "entity_type", "entity_id", "old_value", "new_value",
			"ip_address", "user_agent", "created_at", "user_name", "anonymous_actor",
		}).AddRow(
			uuid.NewString(), resident.String(), domain.AuditDrop, "COMPLAINT", complaintID.String(), nil, nil,
			nil, nil, time.Now(), "Rina", true,
		))

	logs, total, err := repo.ListByEntity(context.Background(), "COMPLAINT", complaintID, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].AnonymousActor)
	assert.NoError(t, mock.ExpectationsWereMet())
}
