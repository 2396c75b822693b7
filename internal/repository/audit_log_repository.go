package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"asrama/internal/domain"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, dormID *uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, old_value, new_value, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		log.ID, log.UserID, log.Action, log.EntityType, log.EntityID,
		log.OldValue, log.NewValue, log.IPAddress, log.UserAgent,
	).Scan(&log.CreatedAt)
}

// List returns the most recent entries, limited to actions performed by users
// of the given dorm when dormID is set.
func (r *auditLogRepository) List(ctx context.Context, dormID *uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Normalize()

	var total int64
	countQuery := `
		SELECT COUNT(*) FROM audit_logs al
		LEFT JOIN users u ON al.user_id = u.id
		WHERE $1::uuid IS NULL OR u.dorm_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, dormID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			al.*,
			u.full_name AS user_name,
			COALESCE(c.is_anonymous AND c.resident_id = al.user_id, false) AS anonymous_actor
		FROM audit_logs al
		LEFT JOIN users u ON al.user_id = u.id
		LEFT JOIN complaints c ON al.entity_type = 'COMPLAINT' AND c.id = al.entity_id
		WHERE $1::uuid IS NULL OR u.dorm_id = $1
		ORDER BY al.created_at DESC
		LIMIT $2 OFFSET $3`

	var logs []domain.AuditLog
	err := r.db.SelectContext(ctx, &logs, query, dormID, params.PageSize, params.Offset())
	return logs, total, err
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE entity_type = $1 AND entity_id = $2`
	if err := r.db.GetContext(ctx, &total, countQuery, entityType, entityID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			al.*,
			u.full_name AS user_name,
			COALESCE(c.is_anonymous AND c.resident_id = al.user_id, false) AS anonymous_actor
		FROM audit_logs al
		LEFT JOIN users u ON al.user_id = u.id
		LEFT JOIN complaints c ON al.entity_type = 'COMPLAINT' AND c.id = al.entity_id
		WHERE al.entity_type = $1 AND al.entity_id = $2
		ORDER BY al.created_at ASC
		LIMIT $3 OFFSET $4`

	var logs []domain.AuditLog
	err := r.db.SelectContext(ctx, &logs, query, entityType, entityID, params.PageSize, params.Offset())
	return logs, total, err
}
