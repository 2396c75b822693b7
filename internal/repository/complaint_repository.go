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

type ComplaintRepository interface {
	Create(ctx context.Context, c *domain.Complaint) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Complaint, error)
	List(ctx context.Context, filter domain.ComplaintFilter, params domain.PaginationParams) ([]domain.Complaint, int64, error)
	UpdateLifecycle(ctx context.Context, c *domain.Complaint, expected domain.RequestStatus) error
	Claim(ctx context.Context, c *domain.Complaint, expected domain.RequestStatus) (bool, error)
	CountByStatus(ctx context.Context, dormID uuid.UUID) (map[domain.RequestStatus]int64, error)
}

type complaintRepository struct {
	db *sqlx.DB
}

func NewComplaintRepository(db *sqlx.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	query := `
		INSERT INTO complaints (id, resident_id, dorm_id, block_id, room_id, title, body, is_anonymous, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		c.ID, c.ResidentID, c.DormID, c.BlockID, c.RoomID,
		c.Title, c.Body, c.IsAnonymous, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Complaint, error) {
	var c domain.Complaint
	query := `SELECT * FROM complaints WHERE id = $1`

	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) List(ctx context.Context, filter domain.ComplaintFilter, params domain.PaginationParams) ([]domain.Complaint, int64, error) {
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
	if filter.ManagedBy != nil {
		args = append(args, *filter.ManagedBy)
		where = append(where, fmt.Sprintf("managed_by = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Unclaimed {
		where = append(where, "managed_by IS NULL")
	}
	clause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM complaints WHERE ` + clause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM complaints
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, clause, len(args)+1, len(args)+2)

	var complaints []domain.Complaint
	err := r.db.SelectContext(ctx, &complaints, query, append(args, params.PageSize, params.Offset())...)
	return complaints, total, err
}

func (r *complaintRepository) UpdateLifecycle(ctx context.Context, c *domain.Complaint, expected domain.RequestStatus) error {
	query := `
		UPDATE complaints
		SET status = $3,
			reviewed_at = $4, reviewed_by = $5,
			in_progress_at = $6, in_progress_by = $7,
			resolved_at = $8, resolved_by = $9,
			dropped_at = $10,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID, expected, c.Status,
		c.ReviewedAt, c.ReviewedBy,
		c.InProgressAt, c.InProgressBy,
		c.ResolvedAt, c.ResolvedBy,
		c.DroppedAt,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.TransitionError{Kind: domain.ErrInvalidTransition, From: expected, To: c.Status}
	}
	return err
}

// Claim writes the manager together with any review stamp in one statement.
// It reports false when another claim or transition got there first.
func (r *complaintRepository) Claim(ctx context.Context, c *domain.Complaint, expected domain.RequestStatus) (bool, error) {
	query := `
		UPDATE complaints
		SET managed_by = $3, claimed_at = $4,
			status = $5, reviewed_at = $6, reviewed_by = $7,
			updated_at = NOW()
		WHERE id = $1 AND status = $2 AND managed_by IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID, expected, c.ManagedBy, c.ClaimedAt,
		c.Status, c.ReviewedAt, c.ReviewedBy,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *complaintRepository) CountByStatus(ctx context.Context, dormID uuid.UUID) (map[domain.RequestStatus]int64, error) {
	return countByStatus(ctx, r.db, `
		SELECT status, COUNT(*) AS total FROM complaints
		WHERE dorm_id = $1
		GROUP BY status`, dormID)
}
