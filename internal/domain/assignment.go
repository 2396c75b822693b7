package domain

import (
	"time"

	"github.com/google/uuid"
)

type Assignment struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ResidentID uuid.UUID  `json:"resident_id" db:"resident_id"`
	RoomID     uuid.UUID  `json:"room_id" db:"room_id"`
	CheckIn    time.Time  `json:"check_in" db:"check_in"`
	CheckOut   *time.Time `json:"check_out,omitempty" db:"check_out"`
	Active     bool       `json:"active" db:"active"`
	AssignedBy uuid.UUID  `json:"assigned_by" db:"assigned_by"`
	AssignedAt time.Time  `json:"assigned_at" db:"assigned_at"`
	RevokedBy  *uuid.UUID `json:"revoked_by,omitempty" db:"revoked_by"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// ResidentPlacement is the active assignment of a resident joined with the
// room hierarchy, used to snapshot dorm/block/room on request submission.
type ResidentPlacement struct {
	AssignmentID uuid.UUID `db:"assignment_id"`
	ResidentID   uuid.UUID `db:"resident_id"`
	RoomID       uuid.UUID `db:"room_id"`
	BlockID      uuid.UUID `db:"block_id"`
	DormID       uuid.UUID `db:"dorm_id"`
}

type AssignInput struct {
	ResidentID uuid.UUID  `json:"resident_id" validate:"required"`
	RoomID     uuid.UUID  `json:"room_id" validate:"required"`
	CheckIn    time.Time  `json:"check_in" validate:"required"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
}

type BulkAssignInput struct {
	ResidentIDs []uuid.UUID `json:"resident_ids" validate:"required,min=1,max=50,dive,required"`
	RoomID      uuid.UUID   `json:"room_id" validate:"required"`
	CheckIn     time.Time   `json:"check_in" validate:"required"`
	CheckOut    *time.Time  `json:"check_out,omitempty"`
}

type RevokeInput struct {
	ResidentID uuid.UUID `json:"resident_id" validate:"required"`
}

// BatchGender returns the gender shared by every resident in the batch.
func BatchGender(residents []User) (Gender, error) {
	var shared Gender
	for _, r := range residents {
		if r.Gender == nil || !r.Gender.IsValid() {
			return "", NewValidationError("gender", "resident "+r.ID.String()+" has no gender set")
		}
		if shared == "" {
			shared = *r.Gender
			continue
		}
		if *r.Gender != shared {
			return "", NewValidationError("gender", "residents in one assignment must share the same gender")
		}
	}
	return shared, nil
}
