package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusSubmitted  RequestStatus = "submitted"
	StatusReviewed   RequestStatus = "reviewed"
	StatusInProgress RequestStatus = "in_progress"
	StatusResolved   RequestStatus = "resolved"
	StatusCompleted  RequestStatus = "completed"
	StatusDropped    RequestStatus = "dropped"
)

// Tracked is implemented by every entity whose status is driven by a
// Lifecycle. Stage accessors return nil for stages the entity does not record.
type Tracked interface {
	CurrentStatus() RequestStatus
	SetStatus(status RequestStatus)
	StageTime(stage RequestStatus) *time.Time
	SetStageTime(stage RequestStatus, at *time.Time)
	StageActor(stage RequestStatus) *uuid.UUID
	SetStageActor(stage RequestStatus, actor *uuid.UUID)
}

type LifecyclePolicy struct {
	Name          string
	Sequence      []RequestStatus
	RevertSources []RequestStatus
	Terminal      []RequestStatus
	// OwnerStage is the stage whose actor owns the gated moves. Empty disables
	// the ownership gate.
	OwnerStage   RequestStatus
	GatedTargets []RequestStatus
	// DropState is reachable from any non-terminal state. Empty disables drop.
	DropState RequestStatus
}

var MaintenancePolicy = LifecyclePolicy{
	Name:          "maintenance",
	Sequence:      []RequestStatus{StatusSubmitted, StatusReviewed, StatusInProgress, StatusCompleted},
	RevertSources: []RequestStatus{StatusInProgress, StatusCompleted},
	Terminal:      []RequestStatus{StatusCompleted},
	OwnerStage:    StatusInProgress,
	GatedTargets:  []RequestStatus{StatusCompleted},
}

var ComplaintPolicy = LifecyclePolicy{
	Name:          "complaint",
	Sequence:      []RequestStatus{StatusSubmitted, StatusReviewed, StatusInProgress, StatusResolved},
	RevertSources: []RequestStatus{StatusInProgress, StatusResolved},
	Terminal:      []RequestStatus{StatusResolved, StatusDropped},
	DropState:     StatusDropped,
}

type Lifecycle struct {
	policy LifecyclePolicy
	now    func() time.Time
}

func NewLifecycle(policy LifecyclePolicy) *Lifecycle {
	return &Lifecycle{policy: policy, now: time.Now}
}

// WithClock returns a copy of the lifecycle that stamps stages with now.
func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
	return &Lifecycle{policy: l.policy, now: now}
}

func (l *Lifecycle) Policy() LifecyclePolicy {
	return l.policy
}

func (l *Lifecycle) IsValid(status RequestStatus) bool {
	return slices.Contains(l.policy.Sequence, status) ||
		(l.policy.DropState != "" && status == l.policy.DropState)
}

// Next returns the immediate successor of status in the forward sequence.
func (l *Lifecycle) Next(status RequestStatus) (RequestStatus, bool) {
	i := slices.Index(l.policy.Sequence, status)
	if i < 0 || i+1 >= len(l.policy.Sequence) {
		return "", false
	}
	return l.policy.Sequence[i+1], true
}

func (l *Lifecycle) Previous(status RequestStatus) (RequestStatus, bool) {
	i := slices.Index(l.policy.Sequence, status)
	if i <= 0 {
		return "", false
	}
	return l.policy.Sequence[i-1], true
}

// IsClosed reports whether status is terminal for interaction: no comments,
// no body or attachment edits.
func (l *Lifecycle) IsClosed(status RequestStatus) bool {
	return slices.Contains(l.policy.Terminal, status)
}

// CanManage reports whether actor passes the ownership gate of t. The gate is
// open when the owner stage has no recorded actor.
func (l *Lifecycle) CanManage(t Tracked, actor uuid.UUID) bool {
	if l.policy.OwnerStage == "" {
		return true
	}
	owner := t.StageActor(l.policy.OwnerStage)
	if owner == nil {
		return true
	}
	return actor != uuid.Nil && *owner == actor
}

// Advance moves t to target when target is the immediate successor of the
// current status. The stage time and actor are only written when unset; a
// nil actor leaves the stage actor untouched.
func (l *Lifecycle) Advance(t Tracked, target RequestStatus, actor uuid.UUID) error {
	current := t.CurrentStatus()
	next, ok := l.Next(current)
	if !ok || next != target {
		return &TransitionError{Kind: ErrInvalidTransition, From: current, To: target}
	}

	if slices.Contains(l.policy.GatedTargets, target) && !l.CanManage(t, actor) {
		return ErrNotAuthorized
	}

	t.SetStatus(target)
	if t.StageTime(target) == nil {
		at := l.now()
		t.SetStageTime(target, &at)
	}
	if actor != uuid.Nil && t.StageActor(target) == nil {
		id := actor
		t.SetStageActor(target, &id)
	}
	return nil
}

// Revert moves t one step back and clears the time and actor of the stage
// being vacated. It returns the status t was reverted to.
func (l *Lifecycle) Revert(t Tracked, actor uuid.UUID) (RequestStatus, error) {
	current := t.CurrentStatus()
	if !slices.Contains(l.policy.RevertSources, current) {
		return "", &TransitionError{Kind: ErrRevertNotAllowed, From: current}
	}
	prev, ok := l.Previous(current)
	if !ok {
		return "", &TransitionError{Kind: ErrRevertNotAllowed, From: current}
	}
	if !l.CanManage(t, actor) {
		return "", &TransitionError{Kind: ErrRevertNotAllowed, From: current, To: prev}
	}

	t.SetStageTime(current, nil)
	t.SetStageActor(current, nil)
	t.SetStatus(prev)
	return prev, nil
}

// Drop moves t into the policy's drop state from any non-terminal status.
// Ownership of the request is checked by the caller.
func (l *Lifecycle) Drop(t Tracked) error {
	current := t.CurrentStatus()
	if l.policy.DropState == "" || l.IsClosed(current) {
		return &TransitionError{Kind: ErrInvalidTransition, From: current, To: l.policy.DropState}
	}

	t.SetStatus(l.policy.DropState)
	if t.StageTime(l.policy.DropState) == nil {
		at := l.now()
		t.SetStageTime(l.policy.DropState, &at)
	}
	return nil
}
