package domain

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceRequest struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	ResidentID   uuid.UUID     `json:"resident_id" db:"resident_id"`
	DormID       uuid.UUID     `json:"dorm_id" db:"dorm_id"`
	BlockID      uuid.UUID     `json:"block_id" db:"block_id"`
	RoomID       uuid.UUID     `json:"room_id" db:"room_id"`
	Title        string        `json:"title" db:"title"`
	Description  string        `json:"description" db:"description"`
	Status       RequestStatus `json:"status" db:"status"`
	ReviewedAt   *time.Time    `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy   *uuid.UUID    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	InProgressAt *time.Time    `json:"in_progress_at,omitempty" db:"in_progress_at"`
	InProgressBy *uuid.UUID    `json:"in_progress_by,omitempty" db:"in_progress_by"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CompletedBy  *uuid.UUID    `json:"completed_by,omitempty" db:"completed_by"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time    `json:"-" db:"deleted_at"`

	Attachments []Attachment `json:"attachments,omitempty" db:"-"`
}

func (m *MaintenanceRequest) CurrentStatus() RequestStatus {
	return m.Status
}

func (m *MaintenanceRequest) SetStatus(status RequestStatus) {
	m.Status = status
}

func (m *MaintenanceRequest) StageTime(stage RequestStatus) *time.Time {
	switch stage {
	case StatusReviewed:
		return m.ReviewedAt
	case StatusInProgress:
		return m.InProgressAt
	case StatusCompleted:
		return m.CompletedAt
	}
	return nil
}

func (m *MaintenanceRequest) SetStageTime(stage RequestStatus, at *time.Time) {
	switch stage {
	case StatusReviewed:
		m.ReviewedAt = at
	case StatusInProgress:
		m.InProgressAt = at
	case StatusCompleted:
		m.CompletedAt = at
	}
}

func (m *MaintenanceRequest) StageActor(stage RequestStatus) *uuid.UUID {
	switch stage {
	case StatusReviewed:
		return m.ReviewedBy
	case StatusInProgress:
		return m.InProgressBy
	case StatusCompleted:
		return m.CompletedBy
	}
	return nil
}

func (m *MaintenanceRequest) SetStageActor(stage RequestStatus, actor *uuid.UUID) {
	switch stage {
	case StatusReviewed:
		m.ReviewedBy = actor
	case StatusInProgress:
		m.InProgressBy = actor
	case StatusCompleted:
		m.CompletedBy = actor
	}
}

type MaintenanceFilter struct {
	ResidentID *uuid.UUID
	DormID     *uuid.UUID
	Status     *RequestStatus
}

type CreateMaintenanceInput struct {
	Title       string `json:"title" validate:"required,min=3,max=150"`
	Description string `json:"description" validate:"required,min=1,max=5000"`
}

type UpdateMaintenanceInput struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3,max=150"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
}

type UpdateStatusInput struct {
	Status RequestStatus `json:"status" validate:"required,oneof=reviewed in_progress resolved completed"`
}
