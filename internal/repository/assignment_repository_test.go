package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asrama/internal/domain"
)

const (
	roomLockQuery   = `SELECT (.+) FROM rooms r INNER JOIN blocks b ON b.id = r.block_id WHERE r.id = \$1 FOR UPDATE OF r`
	activeLockQuery = `SELECT id FROM assignments WHERE room_id = \$1 AND active = true FOR UPDATE`
	insertQuery     = `INSERT INTO assignments`
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func roomRows(roomID uuid.UUID, capacity int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "block_id", "dorm_id", "number", "capacity", "gender", "created_at"}).
		AddRow(roomID.String(), uuid.NewString(), uuid.NewString(), "A-101", capacity, nil, time.Now())
}

func TestAllocateLocked_Commits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)
	roomID := uuid.New()
	residentID := uuid.New()
	staffID := uuid.New()
	assignedAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(roomLockQuery).WithArgs(roomID).WillReturnRows(roomRows(roomID, 2))
	mock.ExpectQuery(activeLockQuery).WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectQuery(insertQuery).
		WithArgs(sqlmock.AnyArg(), residentID, roomID, sqlmock.AnyArg(), sqlmock.AnyArg(), staffID).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_at"}).AddRow(assignedAt))
	mock.ExpectCommit()

	var seen RoomLock
	rows, err := repo.AllocateLocked(context.Background(), roomID, func(lock RoomLock) ([]domain.Assignment, error) {
		seen = lock
		return []domain.Assignment{{
			ID:         uuid.New(),
			ResidentID: residentID,
			RoomID:     roomID,
			CheckIn:    time.Now(),
			AssignedBy: staffID,
		}}, nil
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Active)
	assert.WithinDuration(t, assignedAt, rows[0].AssignedAt, time.Second)
	assert.Equal(t, 1, seen.Active)
	assert.Equal(t, 1, seen.Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateLocked_CallbackErrorRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)
	roomID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(roomLockQuery).WithArgs(roomID).WillReturnRows(roomRows(roomID, 1))
	mock.ExpectQuery(activeLockQuery).WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectRollback()

	_, err := repo.AllocateLocked(context.Background(), roomID, func(lock RoomLock) ([]domain.Assignment, error) {
		if lock.Available() <= 0 {
			return nil, domain.ErrCapacityExceeded
		}
		return nil, nil
	})

	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateLocked_MissingRoom(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)
	roomID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(roomLockQuery).WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	called := false
	_, err := repo.AllocateLocked(context.Background(), roomID, func(RoomLock) ([]domain.Assignment, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateLocked_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)
	roomID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(roomLockQuery).WithArgs(roomID).WillReturnRows(roomRows(roomID, 3))
	mock.ExpectQuery(activeLockQuery).WithArgs(roomID).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(insertQuery).WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	_, err := repo.AllocateLocked(context.Background(), roomID, func(lock RoomLock) ([]domain.Assignment, error) {
		return []domain.Assignment{{ID: uuid.New(), ResidentID: uuid.New(), RoomID: roomID, CheckIn: time.Now()}}, nil
	})

	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevoke(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)
	id, staff := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE assignments SET active = false`).WithArgs(id, staff).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE assignments SET active = false`).WithArgs(id, staff).
		WillReturnResult(sqlmock.NewResult(0, 0))

	revoked, err := repo.Revoke(context.Background(), id, staff)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.Revoke(context.Background(), id, staff)
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveByResident_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)
	residentID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM assignments WHERE resident_id = \$1 AND active = true`).
		WithArgs(residentID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetActiveByResident(context.Background(), residentID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
