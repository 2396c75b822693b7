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

type MaintenanceRepository interface {
	Create(ctx context.Context, req *domain.MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error)
	List(ctx context.Context, filter domain.MaintenanceFilter, params domain.PaginationParams) ([]domain.MaintenanceRequest, int64, error)
	UpdateLifecycle(ctx context.Context, req *domain.MaintenanceRequest, expected domain.RequestStatus) error
	UpdateContent(ctx context.Context, req *domain.MaintenanceRequest) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, dormID uuid.UUID) (map[domain.RequestStatus]int64, error)
}

type maintenanceRepository struct {
	db *sqlx.DB
}

func NewMaintenanceRepository(db *sqlx.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) Create(ctx context.Context, req *domain.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (id, resident_id, dorm_id, block_id, room_id, title, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		req.ID, req.ResidentID, req.DormID, req.BlockID, req.RoomID,
		req.Title, req.Description, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	var req domain.MaintenanceRequest
	query := `SELECT * FROM maintenance_requests WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *maintenanceRepository) List(ctx context.Context, filter domain.MaintenanceFilter, params domain.PaginationParams) ([]domain.MaintenanceRequest, int64, error) {
	params.Normalize()

	where := []string{"deleted_at IS NULL"}
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
	countQuery := `SELECT COUNT(*) FROM maintenance_requests WHERE ` + clause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM maintenance_requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, clause, len(args)+1, len(args)+2)

	var requests []domain.MaintenanceRequest
	err := r.db.SelectContext(ctx, &requests, query, append(args, params.PageSize, params.Offset())...)
	return requests, total, err
}

// UpdateLifecycle persists the status and every stage column. The write only
// applies while the stored status still equals expected.
func (r *maintenanceRepository) UpdateLifecycle(ctx context.Context, req *domain.MaintenanceRequest, expected domain.RequestStatus) error {
	query := `
		UPDATE maintenance_requests
		SET status = $3,
			reviewed_at = $4, reviewed_by = $5,
			in_progress_at = $6, in_progress_by = $7,
			completed_at = $8, completed_by = $9,
			updated_at = NOW()
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		req.ID, expected, req.Status,
		req.ReviewedAt, req.ReviewedBy,
		req.InProgressAt, req.InProgressBy,
		req.CompletedAt, req.CompletedBy,
	).Scan(&req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.TransitionError{Kind: domain.ErrInvalidTransition, From: expected, To: req.Status}
	}
	return err
}

func (r *maintenanceRepository) UpdateContent(ctx context.Context, req *domain.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests
		SET title = $2, description = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, req.ID, req.Title, req.Description).Scan(&req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// SoftDelete only removes requests no staff member has acted on yet.
func (r *maintenanceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE maintenance_requests SET deleted_at = NOW()
		WHERE id = $1 AND status = 'submitted' AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRequestClosed
	}
	return nil
}

func (r *maintenanceRepository) CountByStatus(ctx context.Context, dormID uuid.UUID) (map[domain.RequestStatus]int64, error) {
	return countByStatus(ctx, r.db, `
		SELECT status, COUNT(*) AS total FROM maintenance_requests
		WHERE dorm_id = $1 AND deleted_at IS NULL
		GROUP BY status`, dormID)
}

func countByStatus(ctx context.Context, db *sqlx.DB, query string, dormID uuid.UUID) (map[domain.RequestStatus]int64, error) {
	var rows []struct {
		Status domain.RequestStatus `db:"status"`
		Total  int64                `db:"total"`
	}
	if err := db.SelectContext(ctx, &rows, query, dormID); err != nil {
		return nil, err
	}

	counts := make(map[domain.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
