package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestKind string

const (
	KindMaintenance RequestKind = "maintenance"
	KindComplaint   RequestKind = "complaint"
)

// AnonymousAuthorName replaces the author of comments written by the
// submitting student of an anonymous complaint when shown to staff.
const AnonymousAuthorName = "Anonymous Student"

type Comment struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	RequestKind RequestKind `json:"request_kind" db:"request_kind"`
	RequestID   uuid.UUID   `json:"request_id" db:"request_id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Content     string      `json:"content" db:"content"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time  `json:"-" db:"deleted_at"`

	User *CommentUser `json:"user,omitempty"`
}

type CommentUser struct {
	ID        uuid.UUID `json:"id" db:"user_id"`
	FullName  string    `json:"full_name" db:"user_full_name"`
	AvatarURL *string   `json:"avatar_url" db:"user_avatar_url"`
	Role      string    `json:"role" db:"user_role"`
}

type CreateCommentInput struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type UpdateCommentInput struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// MaskForViewer returns the comments as the viewer may see them. On an
// anonymous complaint every comment authored by the submitting student is
// rendered with a placeholder author for anyone but that student. The stored
// authorship (UserID) is never touched on the originals.
func MaskForViewer(comments []Comment, complaint *Complaint, viewer Actor) []Comment {
	out := make([]Comment, len(comments))
	copy(out, comments)

	if complaint == nil || !complaint.IsAnonymous || viewer.UserID == complaint.ResidentID {
		return out
	}

	for i := range out {
		if out[i].UserID != complaint.ResidentID {
			continue
		}
		out[i].UserID = uuid.Nil
		out[i].User = &CommentUser{
			FullName: AnonymousAuthorName,
			Role:     string(RoleStudent),
		}
	}
	return out
}
