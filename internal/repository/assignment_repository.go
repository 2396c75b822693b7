package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"asrama/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// RoomLock is the state of a room observed while holding its row lock.
type RoomLock struct {
	Room   domain.Room
	Active int
}

func (l RoomLock) Available() int {
	return l.Room.Capacity - l.Active
}

// AllocateFunc decides, under the room lock, which assignments to insert.
// Returning an error aborts the transaction without writing anything.
type AllocateFunc func(lock RoomLock) ([]domain.Assignment, error)

type AssignmentRepository interface {
	GetActiveByResident(ctx context.Context, residentID uuid.UUID) (*domain.Assignment, error)
	ListActiveResidents(ctx context.Context, residentIDs []uuid.UUID) ([]uuid.UUID, error)
	GetPlacement(ctx context.Context, residentID uuid.UUID) (*domain.ResidentPlacement, error)
	ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Assignment, error)
	AllocateLocked(ctx context.Context, roomID uuid.UUID, fn AllocateFunc) ([]domain.Assignment, error)
	Revoke(ctx context.Context, id, revokedBy uuid.UUID) (bool, error)
}

type assignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetActiveByResident(ctx context.Context, residentID uuid.UUID) (*domain.Assignment, error) {
	var a domain.Assignment
	query := `SELECT * FROM assignments WHERE resident_id = $1 AND active = true`

	err := r.db.GetContext(ctx, &a, query, residentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) ListActiveResidents(ctx context.Context, residentIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT resident_id FROM assignments WHERE resident_id = ANY($1::uuid[]) AND active = true`
	err := r.db.SelectContext(ctx, &ids, query, pq.Array(uuidStrings(residentIDs)))
	return ids, err
}

func (r *assignmentRepository) GetPlacement(ctx context.Context, residentID uuid.UUID) (*domain.ResidentPlacement, error) {
	var p domain.ResidentPlacement
	query := `
		SELECT a.id AS assignment_id, a.resident_id, a.room_id, r.block_id, b.dorm_id
		FROM assignments a
		INNER JOIN rooms r ON r.id = a.room_id
		INNER JOIN blocks b ON b.id = r.block_id
		WHERE a.resident_id = $1 AND a.active = true`

	err := r.db.GetContext(ctx, &p, query, residentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *assignmentRepository) ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	query := `
		SELECT * FROM assignments
		WHERE room_id = $1 AND active = true
		ORDER BY assigned_at`
	err := r.db.SelectContext(ctx, &assignments, query, roomID)
	return assignments, err
}

// AllocateLocked serialises allocations per room. The room row is locked
// first so that an empty room is guarded too, then the active assignment rows
// are locked and counted before fn decides what to insert.
func (r *assignmentRepository) AllocateLocked(ctx context.Context, roomID uuid.UUID, fn AllocateFunc) (inserted []domain.Assignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lock RoomLock
	roomQuery := `
		SELECT r.id, r.block_id, b.dorm_id, r.number, r.capacity, r.gender, r.created_at
		FROM rooms r
		INNER JOIN blocks b ON b.id = r.block_id
		WHERE r.id = $1
		FOR UPDATE OF r`
	if err = tx.GetContext(ctx, &lock.Room, roomQuery, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return nil, err
	}

	var activeIDs []uuid.UUID
	activeQuery := `SELECT id FROM assignments WHERE room_id = $1 AND active = true FOR UPDATE`
	if err = tx.SelectContext(ctx, &activeIDs, activeQuery, roomID); err != nil {
		return nil, err
	}
	lock.Active = len(activeIDs)

	rows, err := fn(lock)
	if err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO assignments (id, resident_id, room_id, check_in, check_out, active, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4, $5, true, $6, NOW())
		RETURNING assigned_at`
	for i := range rows {
		rows[i].Active = true
		if err = tx.QueryRowxContext(ctx, insert,
			rows[i].ID, rows[i].ResidentID, rows[i].RoomID, rows[i].CheckIn, rows[i].CheckOut, rows[i].AssignedBy,
		).Scan(&rows[i].AssignedAt); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				err = domain.ErrAlreadyAssigned
			}
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit allocation: %w", err)
	}
	return rows, nil
}

func (r *assignmentRepository) Revoke(ctx context.Context, id, revokedBy uuid.UUID) (bool, error) {
	query := `
		UPDATE assignments
		SET active = false, revoked_by = $2, revoked_at = NOW()
		WHERE id = $1 AND active = true`

	res, err := r.db.ExecContext(ctx, query, id, revokedBy)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
