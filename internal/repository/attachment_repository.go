package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"asrama/internal/domain"
)

type AttachmentRepository interface {
	Create(ctx context.Context, a *domain.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	ListByRequest(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID) ([]domain.Attachment, error)
	CountByRequest(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	query := `
		INSERT INTO attachments (id, request_kind, request_id, uploaded_by, object_key, file_name, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		a.ID, a.RequestKind, a.RequestID, a.UploadedBy, a.ObjectKey, a.FileName, a.FileSize, a.MimeType,
	).Scan(&a.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	var a domain.Attachment
	err := r.db.GetContext(ctx, &a, `SELECT * FROM attachments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attachmentRepository) ListByRequest(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID) ([]domain.Attachment, error) {
	var attachments []domain.Attachment
	query := `
		SELECT * FROM attachments
		WHERE request_kind = $1 AND request_id = $2
		ORDER BY created_at`
	err := r.db.SelectContext(ctx, &attachments, query, kind, requestID)
	return attachments, err
}

func (r *attachmentRepository) CountByRequest(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attachments WHERE request_kind = $1 AND request_id = $2`
	err := r.db.GetContext(ctx, &count, query, kind, requestID)
	return count, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return err
}
