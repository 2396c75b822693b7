package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"asrama/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRequest(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID, params domain.PaginationParams) ([]domain.Comment, int64, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, request_kind, request_id, user_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.RequestKind, comment.RequestID, comment.UserID, comment.Content,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	query := `
		SELECT id, request_kind, request_id, user_id, content, created_at, updated_at, deleted_at
		FROM comments WHERE id = $1 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &comment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE comments
		SET content = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.Content,
	).Scan(&comment.UpdatedAt)
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE comments SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *commentRepository) ListByRequest(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID, params domain.PaginationParams) ([]domain.Comment, int64, error) {
	params.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*) FROM comments WHERE request_kind = $1 AND request_id = $2 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, kind, requestID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			c.id, c.request_kind, c.request_id, c.user_id, c.content, c.created_at, c.updated_at,
			u.id, u.full_name, u.avatar_url, u.role
		FROM comments c
		INNER JOIN users u ON c.user_id = u.id
		WHERE c.request_kind = $1 AND c.request_id = $2 AND c.deleted_at IS NULL
		ORDER BY c.created_at ASC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryxContext(ctx, query, kind, requestID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		var user domain.CommentUser
		err := rows.Scan(
			&c.ID, &c.RequestKind, &c.RequestID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&user.ID, &user.FullName, &user.AvatarURL, &user.Role,
		)
		if err != nil {
			return nil, 0, err
		}
		c.User = &user
		comments = append(comments, c)
	}

	return comments, total, rows.Err()
}
