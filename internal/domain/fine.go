package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FineStatus string

const (
	FineUnpaid FineStatus = "unpaid"
	FinePaid   FineStatus = "paid"
	FineWaived FineStatus = "waived"
)

type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealRejected AppealStatus = "rejected"
)

type Fine struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ResidentID   uuid.UUID       `json:"resident_id" db:"resident_id"`
	DormID       uuid.UUID       `json:"dorm_id" db:"dorm_id"`
	IssuedBy     uuid.UUID       `json:"issued_by" db:"issued_by"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Reason       string          `json:"reason" db:"reason"`
	Status       FineStatus      `json:"status" db:"status"`
	PaidAt       *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	AppealStatus *AppealStatus   `json:"appeal_status,omitempty" db:"appeal_status"`
	AppealReason *string         `json:"appeal_reason,omitempty" db:"appeal_reason"`
	AppealedAt   *time.Time      `json:"appealed_at,omitempty" db:"appealed_at"`
	DecidedBy    *uuid.UUID      `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt    *time.Time      `json:"decided_at,omitempty" db:"decided_at"`
	DecisionNote *string         `json:"decision_note,omitempty" db:"decision_note"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

type FineFilter struct {
	ResidentID *uuid.UUID
	DormID     *uuid.UUID
	Status     *FineStatus
}

type IssueFineInput struct {
	ResidentID uuid.UUID       `json:"resident_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason" validate:"required,min=3,max=500"`
}

type AppealFineInput struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type DecideAppealInput struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note,omitempty" validate:"omitempty,max=500"`
}
