package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrRevertNotAllowed     = errors.New("revert not allowed")
	ErrAlreadyClaimed       = errors.New("complaint already claimed by another staff member")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrCapacityExceeded     = errors.New("room capacity exceeded")
	ErrInsufficientCapacity = errors.New("insufficient room capacity")
	ErrValidation           = errors.New("validation failed")
	ErrRequestClosed        = errors.New("request is closed")
	ErrAlreadyAssigned      = errors.New("resident already has an active assignment")
	ErrFineSettled          = errors.New("fine is no longer unpaid")
	ErrAppealNotAllowed     = errors.New("appeal not allowed")
)

// TransitionError describes a rejected lifecycle move. It matches
// ErrInvalidTransition or ErrRevertNotAllowed through errors.Is.
type TransitionError struct {
	Kind error
	From RequestStatus
	To   RequestStatus
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("%s: from %s", e.Kind, e.From)
	}
	return fmt.Sprintf("%s: %s -> %s", e.Kind, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return e.Kind
}

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientCapacityError carries the remaining number of beds so callers
// can tell the user how many residents still fit.
type InsufficientCapacityError struct {
	Available int
	Requested int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient room capacity: %d requested, %d available", e.Requested, e.Available)
}

func (e *InsufficientCapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}
