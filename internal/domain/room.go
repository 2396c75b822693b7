package domain

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BlockID   uuid.UUID `json:"block_id" db:"block_id"`
	DormID    uuid.UUID `json:"dorm_id" db:"dorm_id"`
	Number    string    `json:"number" db:"number"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Gender    *Gender   `json:"gender,omitempty" db:"gender"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Accepts reports whether residents of gender g may live in the room.
// Rooms without a gender constraint accept anyone.
func (r *Room) Accepts(g Gender) bool {
	return r.Gender == nil || *r.Gender == g
}

type RoomOccupancy struct {
	RoomID    uuid.UUID `json:"room_id" db:"room_id"`
	Number    string    `json:"number" db:"number"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Occupied  int       `json:"occupied" db:"occupied"`
	Available int       `json:"available" db:"-"`
}
