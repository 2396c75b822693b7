package domain

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	RequestKind RequestKind `json:"request_kind" db:"request_kind"`
	RequestID   uuid.UUID   `json:"request_id" db:"request_id"`
	UploadedBy  uuid.UUID   `json:"uploaded_by" db:"uploaded_by"`
	ObjectKey   string      `json:"object_key" db:"object_key"`
	FileName    string      `json:"file_name" db:"file_name"`
	FileSize    int64       `json:"file_size" db:"file_size"`
	MimeType    string      `json:"mime_type" db:"mime_type"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

type RegisterAttachmentInput struct {
	ObjectKey string `json:"object_key" validate:"required,max=512"`
	FileName  string `json:"file_name" validate:"required,max=255"`
}
