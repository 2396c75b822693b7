package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"asrama/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	ListStaffByDorm(ctx context.Context, dormID uuid.UUID) ([]domain.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []domain.User
	query := `SELECT * FROM users WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL`
	err := r.db.SelectContext(ctx, &users, query, pq.Array(uuidStrings(ids)))
	return users, err
}

func (r *userRepository) ListStaffByDorm(ctx context.Context, dormID uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	query := `
		SELECT * FROM users
		WHERE role = 'staff' AND dorm_id = $1 AND is_active = true AND deleted_at IS NULL
		ORDER BY full_name`
	err := r.db.SelectContext(ctx, &users, query, dormID)
	return users, err
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
