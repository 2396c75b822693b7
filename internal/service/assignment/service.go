package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/pkg/metrics"
	"asrama/internal/pkg/validate"
	"asrama/internal/repository"
	"asrama/internal/service/audit"
	"asrama/internal/service/dashboard"
	"asrama/internal/service/notification"
)

const entityType = "ASSIGNMENT"

const (
	modeSingle = "single"
	modeBulk   = "bulk"
)

type Service interface {
	AssignOne(ctx context.Context, actor domain.Actor, input domain.AssignInput, meta *domain.RequestMeta) (*domain.Assignment, error)
	AssignBulk(ctx context.Context, actor domain.Actor, input domain.BulkAssignInput, meta *domain.RequestMeta) ([]domain.Assignment, error)
	Revoke(ctx context.Context, actor domain.Actor, residentID uuid.UUID, meta *domain.RequestMeta) (*domain.Assignment, error)
	Current(ctx context.Context, actor domain.Actor, residentID uuid.UUID) (*domain.Assignment, error)
	ListByRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) ([]domain.Assignment, error)
}

type service struct {
	assignmentRepo repository.AssignmentRepository
	roomRepo       repository.RoomRepository
	userRepo       repository.UserRepository
	audit          audit.Recorder
	notifier       notification.Notifier
	cache          dashboard.Invalidator
	log            *logrus.Entry
}

func NewService(
	assignmentRepo repository.AssignmentRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	auditRecorder audit.Recorder,
	notifier notification.Notifier,
	cache dashboard.Invalidator,
	logger *logrus.Logger,
) Service {
	return &service{
		assignmentRepo: assignmentRepo,
		roomRepo:       roomRepo,
		userRepo:       userRepo,
		audit:          auditRecorder,
		notifier:       notifier,
		cache:          cache,
		log:            logrus.NewEntry(logger).WithField("component", "assignment"),
	}
}

func (s *service) AssignOne(ctx context.Context, actor domain.Actor, input domain.AssignInput, meta *domain.RequestMeta) (*domain.Assignment, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	rows, err := s.allocate(ctx, actor, allocation{
		mode:      modeSingle,
		residents: []uuid.UUID{input.ResidentID},
		roomID:    input.RoomID,
		checkIn:   input.CheckIn,
		checkOut:  input.CheckOut,
	}, meta)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (s *service) AssignBulk(ctx context.Context, actor domain.Actor, input domain.BulkAssignInput, meta *domain.RequestMeta) ([]domain.Assignment, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	return s.allocate(ctx, actor, allocation{
		mode:      modeBulk,
		residents: input.ResidentIDs,
		roomID:    input.RoomID,
		checkIn:   input.CheckIn,
		checkOut:  input.CheckOut,
	}, meta)
}

type allocation struct {
	mode      string
	residents []uuid.UUID
	roomID    uuid.UUID
	checkIn   time.Time
	checkOut  *time.Time
}

func (s *service) allocate(ctx context.Context, actor domain.Actor, a allocation, meta *domain.RequestMeta) ([]domain.Assignment, error) {
	rows, room, err := s.place(ctx, actor, a)
	metrics.RecordAllocation(a.mode, err)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"room_id":   a.roomID,
			"residents": len(a.residents),
			"mode":      a.mode,
		}).Debug("room allocation rejected")
		return nil, err
	}

	for i := range rows {
		s.audit.Record(ctx, domain.NewAudit(actor.UserID, domain.AuditAssignRoom, entityType, rows[i].ID, nil, rows[i], meta))
		s.notifier.Notify(ctx, rows[i].ResidentID, domain.NotifRoomAssigned, map[string]string{
			"assignment_id": rows[i].ID.String(),
			"room_id":       room.ID.String(),
			"room_number":   room.Number,
			"message":       fmt.Sprintf("You have been assigned to room %s", room.Number),
		})
	}
	s.cache.Invalidate(ctx, room.DormID)

	return rows, nil
}

// place checks every precondition that does not depend on occupancy, then
// re-counts occupancy under the room lock and inserts the batch.
func (s *service) place(ctx context.Context, actor domain.Actor, a allocation) ([]domain.Assignment, *domain.Room, error) {
	if !actor.IsStaff() {
		return nil, nil, domain.ErrNotAuthorized
	}
	if err := checkBatch(a); err != nil {
		return nil, nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, a.roomID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.InDormScope(room.DormID) {
		return nil, nil, domain.ErrNotAuthorized
	}

	residents, err := s.userRepo.GetByIDs(ctx, a.residents)
	if err != nil {
		return nil, nil, err
	}
	if len(residents) != len(a.residents) {
		return nil, nil, domain.NewValidationError("resident_ids", "contains unknown residents")
	}
	for _, r := range residents {
		if r.Role != string(domain.RoleStudent) || !r.IsActive {
			return nil, nil, domain.NewValidationError("resident_ids", "only active students can be assigned")
		}
	}

	active, err := s.assignmentRepo.ListActiveResidents(ctx, a.residents)
	if err != nil {
		return nil, nil, err
	}
	if len(active) > 0 {
		return nil, nil, domain.ErrAlreadyAssigned
	}

	gender, err := domain.BatchGender(residents)
	if err != nil {
		return nil, nil, err
	}
	if !room.Accepts(gender) {
		return nil, nil, domain.NewValidationError("gender", fmt.Sprintf("room %s does not accept %s residents", room.Number, gender))
	}
	rows, err := s.assignmentRepo.AllocateLocked(ctx, room.ID, func(lock repository.RoomLock) ([]domain.Assignment, error) {
		if !lock.Room.Accepts(gender) {
			return nil, domain.NewValidationError("gender", fmt.Sprintf("room %s does not accept %s residents", lock.Room.Number, gender))
		}
		if available := lock.Available(); available < len(a.residents) {
			return nil, capacityError(a.mode, available, len(a.residents))
		}

		out := make([]domain.Assignment, 0, len(a.residents))
		for _, residentID := range a.residents {
			out = append(out, domain.Assignment{
				ID:         uuid.New(),
				ResidentID: residentID,
				RoomID:     lock.Room.ID,
				CheckIn:    a.checkIn,
				CheckOut:   a.checkOut,
				Active:     true,
				AssignedBy: actor.UserID,
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rows, room, nil
}

func checkBatch(a allocation) error {
	seen := make(map[uuid.UUID]struct{}, len(a.residents))
	for _, id := range a.residents {
		if _, dup := seen[id]; dup {
			return domain.NewValidationError("resident_ids", "contains duplicate residents")
		}
		seen[id] = struct{}{}
	}
	if a.checkOut != nil && !a.checkOut.After(a.checkIn) {
		return domain.NewValidationError("check_out", "must be after check_in")
	}
	return nil
}

func capacityError(mode string, available, requested int) error {
	if available < 0 {
		available = 0
	}
	if mode == modeSingle {
		return domain.ErrCapacityExceeded
	}
	return &domain.InsufficientCapacityError{Available: available, Requested: requested}
}

// Revoke ends the resident's active assignment. It returns nil without error
// when there is nothing to end.
func (s *service) Revoke(ctx context.Context, actor domain.Actor, residentID uuid.UUID, meta *domain.RequestMeta) (*domain.Assignment, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}

	current, err := s.assignmentRepo.GetActiveByResident(ctx, residentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, current.RoomID)
	if err != nil {
		return nil, err
	}
	if !actor.InDormScope(room.DormID) {
		return nil, domain.ErrNotAuthorized
	}

	ended, err := s.assignmentRepo.Revoke(ctx, current.ID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !ended {
		return nil, nil
	}

	before := *current
	now := time.Now()
	revokedBy := actor.UserID
	current.Active = false
	current.RevokedAt = &now
	current.RevokedBy = &revokedBy

	s.audit.Record(ctx, domain.NewAudit(actor.UserID, domain.AuditRevokeRoom, entityType, current.ID, before, current, meta))
	s.notifier.Notify(ctx, residentID, domain.NotifRoomRevoked, map[string]string{
		"assignment_id": current.ID.String(),
		"room_id":       room.ID.String(),
		"room_number":   room.Number,
		"message":       fmt.Sprintf("Your assignment to room %s has ended", room.Number),
	})
	s.cache.Invalidate(ctx, room.DormID)

	return current, nil
}

func (s *service) Current(ctx context.Context, actor domain.Actor, residentID uuid.UUID) (*domain.Assignment, error) {
	if actor.IsStudent() && actor.UserID != residentID {
		return nil, domain.ErrNotAuthorized
	}

	current, err := s.assignmentRepo.GetActiveByResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	if actor.IsStudent() {
		return current, nil
	}

	room, err := s.roomRepo.GetByID(ctx, current.RoomID)
	if err != nil {
		return nil, err
	}
	if !actor.InDormScope(room.DormID) {
		return nil, domain.ErrNotAuthorized
	}
	return current, nil
}

func (s *service) ListByRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) ([]domain.Assignment, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !actor.InDormScope(room.DormID) {
		return nil, domain.ErrNotAuthorized
	}

	return s.assignmentRepo.ListActiveByRoom(ctx, roomID)
}
