package domain

import (
	"time"

	"github.com/google/uuid"
)

type Complaint struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	ResidentID   uuid.UUID     `json:"resident_id" db:"resident_id"`
	DormID       uuid.UUID     `json:"dorm_id" db:"dorm_id"`
	BlockID      uuid.UUID     `json:"block_id" db:"block_id"`
	RoomID       uuid.UUID     `json:"room_id" db:"room_id"`
	Title        string        `json:"title" db:"title"`
	Body         string        `json:"body" db:"body"`
	IsAnonymous  bool          `json:"is_anonymous" db:"is_anonymous"`
	Status       RequestStatus `json:"status" db:"status"`
	ManagedBy    *uuid.UUID    `json:"managed_by,omitempty" db:"managed_by"`
	ClaimedAt    *time.Time    `json:"claimed_at,omitempty" db:"claimed_at"`
	ReviewedAt   *time.Time    `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy   *uuid.UUID    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	InProgressAt *time.Time    `json:"in_progress_at,omitempty" db:"in_progress_at"`
	InProgressBy *uuid.UUID    `json:"in_progress_by,omitempty" db:"in_progress_by"`
	ResolvedAt   *time.Time    `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy   *uuid.UUID    `json:"resolved_by,omitempty" db:"resolved_by"`
	DroppedAt    *time.Time    `json:"dropped_at,omitempty" db:"dropped_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`

	Comments []Comment `json:"comments,omitempty" db:"-"`
}

func (c *Complaint) CurrentStatus() RequestStatus {
	return c.Status
}

func (c *Complaint) SetStatus(status RequestStatus) {
	c.Status = status
}

func (c *Complaint) StageTime(stage RequestStatus) *time.Time {
	switch stage {
	case StatusReviewed:
		return c.ReviewedAt
	case StatusInProgress:
		return c.InProgressAt
	case StatusResolved:
		return c.ResolvedAt
	case StatusDropped:
		return c.DroppedAt
	}
	return nil
}

func (c *Complaint) SetStageTime(stage RequestStatus, at *time.Time) {
	switch stage {
	case StatusReviewed:
		c.ReviewedAt = at
	case StatusInProgress:
		c.InProgressAt = at
	case StatusResolved:
		c.ResolvedAt = at
	case StatusDropped:
		c.DroppedAt = at
	}
}

// StageActor has no dropped case: only the owning resident drops.
func (c *Complaint) StageActor(stage RequestStatus) *uuid.UUID {
	switch stage {
	case StatusReviewed:
		return c.ReviewedBy
	case StatusInProgress:
		return c.InProgressBy
	case StatusResolved:
		return c.ResolvedBy
	}
	return nil
}

func (c *Complaint) SetStageActor(stage RequestStatus, actor *uuid.UUID) {
	switch stage {
	case StatusReviewed:
		c.ReviewedBy = actor
	case StatusInProgress:
		c.InProgressBy = actor
	case StatusResolved:
		c.ResolvedBy = actor
	}
}

func (c *Complaint) IsManagedBy(staffID uuid.UUID) bool {
	return c.ManagedBy != nil && *c.ManagedBy == staffID
}

type ComplaintFilter struct {
	ResidentID *uuid.UUID
	DormID     *uuid.UUID
	ManagedBy  *uuid.UUID
	Status     *RequestStatus
	Unclaimed  bool
}

type CreateComplaintInput struct {
	Title       string `json:"title" validate:"required,min=3,max=150"`
	Body        string `json:"body" validate:"required,min=1,max=5000"`
	IsAnonymous bool   `json:"is_anonymous"`
}
