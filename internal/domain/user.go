package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	FullName  string     `json:"full_name" db:"full_name"`
	AvatarURL *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	Role      string     `json:"role" db:"role"`
	DormID    *uuid.UUID `json:"dorm_id,omitempty" db:"dorm_id"`
	Gender    *Gender    `json:"gender,omitempty" db:"gender"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleStaff   UserRole = "staff"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// Actor returns the explicit caller identity that is threaded through every
// service call.
func (u *User) Actor() Actor {
	return Actor{
		UserID: u.ID,
		Role:   UserRole(u.Role),
		DormID: u.DormID,
	}
}

type Actor struct {
	UserID uuid.UUID
	Role   UserRole
	DormID *uuid.UUID
}

func (a Actor) IsStudent() bool {
	return a.Role == RoleStudent
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// InDormScope reports whether the actor may act on records of the given dorm.
// Admins are not bound to a dorm.
func (a Actor) InDormScope(dormID uuid.UUID) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleStaff:
		return a.DormID != nil && *a.DormID == dormID
	default:
		return false
	}
}
