package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"asrama/internal/domain"
)

type FineRepository interface {
	Create(ctx context.Context, fine *domain.Fine) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Fine, error)
	List(ctx context.Context, filter domain.FineFilter, params domain.PaginationParams) ([]domain.Fine, int64, error)
	Update(ctx context.Context, fine *domain.Fine, expected domain.FineStatus) error
}

type fineRepository struct {
	db *sqlx.DB
}

func NewFineRepository(db *sqlx.DB) FineRepository {
	return &fineRepository{db: db}
}

func (r *fineRepository) Create(ctx context.Context, fine *domain.Fine) error {
	query := `
		INSERT INTO fines (id, resident_id, dorm_id, issued_by, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		fine.ID, fine.ResidentID, fine.DormID, fine.IssuedBy, fine.Amount, fine.Reason, fine.Status,
	).Scan(&fine.CreatedAt, &fine.UpdatedAt)
}

func (r *fineRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fine, error) {
	var fine domain.Fine
	err := r.db.GetContext(ctx, &fine, `SELECT * FROM fines WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

func (r *fineRepository) List(ctx context.Context, filter domain.FineFilter, params domain.PaginationParams) ([]domain.Fine, int64, error) {
	params.Normalize()

	where := []string{"1=1"}
	var args []interface{}
	if filter.ResidentID != nil {
		args = append(args, *filter.ResidentID)
		where = append(where, fmt.Sprintf("resident_id = $%d", len(args)))
	}
	if filter.DormID != nil {
		args = append(args, *filter.DormID)
		where = append(where, fmt.Sprintf("dorm_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM fines WHERE `+clause, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM fines
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, clause, len(args)+1, len(args)+2)

	var fines []domain.Fine
	err := r.db.SelectContext(ctx, &fines, query, append(args, params.PageSize, params.Offset())...)
	return fines, total, err
}

// Update writes the payment and appeal columns only while the stored row is
// the one the caller read: same status and same updated_at. It returns
// ErrFineSettled when another writer got there first.
func (r *fineRepository) Update(ctx context.Context, fine *domain.Fine, expected domain.FineStatus) error {
	query := `
		UPDATE fines
		SET status = $2, paid_at = $3,
			appeal_status = $4, appeal_reason = $5, appealed_at = $6,
			decided_by = $7, decided_at = $8, decision_note = $9,
			updated_at = NOW()
		WHERE id = $1 AND status = $10 AND updated_at = $11
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		fine.ID, fine.Status, fine.PaidAt,
		fine.AppealStatus, fine.AppealReason, fine.AppealedAt,
		fine.DecidedBy, fine.DecidedAt, fine.DecisionNote,
		expected, fine.UpdatedAt,
	).Scan(&fine.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrFineSettled
	}
	return err
}
