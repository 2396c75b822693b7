package fine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/pkg/validate"
	"asrama/internal/repository"
	"asrama/internal/service/audit"
	"asrama/internal/service/notification"
)

const entityType = "FINE"

// maxAmount bounds a single fine to what the amount column can hold.
var maxAmount = decimal.RequireFromString("99999999.99")

type Service interface {
	Issue(ctx context.Context, actor domain.Actor, input domain.IssueFineInput, meta *domain.RequestMeta) (*domain.Fine, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Fine, error)
	List(ctx context.Context, actor domain.Actor, status *domain.FineStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.Fine], error)
	Pay(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Fine, error)
	Appeal(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.AppealFineInput) (*domain.Fine, error)
	DecideAppeal(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.DecideAppealInput, meta *domain.RequestMeta) (*domain.Fine, error)
}

type service struct {
	fineRepo       repository.FineRepository
	userRepo       repository.UserRepository
	assignmentRepo repository.AssignmentRepository
	audit          audit.Recorder
	notifier       notification.Notifier
	now            func() time.Time
	log            *logrus.Entry
}

func NewService(
	fineRepo repository.FineRepository,
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	auditRecorder audit.Recorder,
	notifier notification.Notifier,
	logger *logrus.Logger,
) Service {
	return &service{
		fineRepo:       fineRepo,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		audit:          auditRecorder,
		notifier:       notifier,
		now:            time.Now,
		log:            logrus.NewEntry(logger).WithField("component", "fine"),
	}
}

func (s *service) Issue(ctx context.Context, actor domain.Actor, input domain.IssueFineInput, meta *domain.RequestMeta) (*domain.Fine, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "must be greater than 0")
	}
	if input.Amount.GreaterThan(maxAmount) || input.Amount.Exponent() < -2 {
		return nil, domain.NewValidationError("amount", "must have at most 2 decimals and be below "+maxAmount.String())
	}

	resident, err := s.userRepo.GetByID(ctx, input.ResidentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("resident_id", "resident does not exist")
		}
		return nil, err
	}
	if resident.Role != string(domain.RoleStudent) {
		return nil, domain.NewValidationError("resident_id", "fines can only be issued to students")
	}

	dormID, err := s.residentDorm(ctx, resident)
	if err != nil {
		return nil, err
	}
	if !actor.InDormScope(dormID) {
		return nil, domain.ErrNotAuthorized
	}

	fine := &domain.Fine{
		ID:         uuid.New(),
		ResidentID: resident.ID,
		DormID:     dormID,
		IssuedBy:   actor.UserID,
		Amount:     input.Amount,
		Reason:     input.Reason,
		Status:     domain.FineUnpaid,
	}
	if err := s.fineRepo.Create(ctx, fine); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.NewAudit(actor.UserID, domain.AuditIssueFine, entityType, fine.ID, nil, fine, meta))
	s.notifier.Notify(ctx, resident.ID, domain.NotifFineIssued, map[string]string{
		"fine_id": fine.ID.String(),
		"amount":  fine.Amount.StringFixed(2),
		"message": fmt.Sprintf("You have been fined %s: %s", fine.Amount.StringFixed(2), fine.Reason),
	})
	return fine, nil
}

// residentDorm prefers the dorm of the resident's active room and falls back
// to the dorm on the profile.
func (s *service) residentDorm(ctx context.Context, resident *domain.User) (uuid.UUID, error) {
	placement, err := s.assignmentRepo.GetPlacement(ctx, resident.ID)
	if err == nil {
		return placement.DormID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, err
	}
	if resident.DormID != nil {
		return *resident.DormID, nil
	}
	return uuid.Nil, domain.NewValidationError("resident_id", "resident does not belong to a dorm")
}

func (s *service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Fine, error) {
	fine, err := s.fineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, fine) {
		return nil, domain.ErrNotAuthorized
	}
	return fine, nil
}

func canView(actor domain.Actor, fine *domain.Fine) bool {
	if actor.IsStudent() {
		return fine.ResidentID == actor.UserID
	}
	return actor.InDormScope(fine.DormID)
}

func (s *service) List(ctx context.Context, actor domain.Actor, status *domain.FineStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.Fine], error) {
	params.Normalize()

	filter := domain.FineFilter{Status: status}
	switch actor.Role {
	case domain.RoleStudent:
		filter.ResidentID = &actor.UserID
	case domain.RoleStaff:
		if actor.DormID == nil {
			return domain.PaginatedResponse[domain.Fine]{}, domain.ErrNotAuthorized
		}
		filter.DormID = actor.DormID
	case domain.RoleAdmin:
	default:
		return domain.PaginatedResponse[domain.Fine]{}, domain.ErrNotAuthorized
	}

	fines, total, err := s.fineRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Fine]{}, err
	}
	return domain.NewPaginatedResponse(fines, params.Page, params.PageSize, total), nil
}

func (s *service) Pay(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Fine, error) {
	fine, err := s.loadOwnUnpaid(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fine.Status = domain.FinePaid
	fine.PaidAt = &now
	if err := s.fineRepo.Update(ctx, fine, domain.FineUnpaid); err != nil {
		return nil, err
	}
	return fine, nil
}

// Appeal records the resident's single appeal against an unpaid fine.
func (s *service) Appeal(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.AppealFineInput) (*domain.Fine, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	fine, err := s.loadOwnUnpaid(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if fine.AppealStatus != nil {
		return nil, domain.ErrAppealNotAllowed
	}

	now := s.now()
	pending := domain.AppealPending
	reason := input.Reason
	fine.AppealStatus = &pending
	fine.AppealReason = &reason
	fine.AppealedAt = &now
	if err := s.fineRepo.Update(ctx, fine, domain.FineUnpaid); err != nil {
		return nil, err
	}
	return fine, nil
}

func (s *service) loadOwnUnpaid(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Fine, error) {
	fine, err := s.fineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStudent() || fine.ResidentID != actor.UserID {
		return nil, domain.ErrNotAuthorized
	}
	if fine.Status != domain.FineUnpaid {
		return nil, domain.ErrFineSettled
	}
	return fine, nil
}

// DecideAppeal settles a pending appeal. Approval waives the fine; rejection
// leaves it unpaid.
func (s *service) DecideAppeal(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.DecideAppealInput, meta *domain.RequestMeta) (*domain.Fine, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	fine, err := s.fineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() || !actor.InDormScope(fine.DormID) {
		return nil, domain.ErrNotAuthorized
	}
	if fine.AppealStatus == nil || *fine.AppealStatus != domain.AppealPending {
		return nil, domain.ErrAppealNotAllowed
	}
	if fine.Status != domain.FineUnpaid {
		return nil, domain.ErrFineSettled
	}

	before := *fine
	now := s.now()
	decidedBy := actor.UserID
	decision := domain.AppealRejected
	if input.Approve {
		decision = domain.AppealApproved
		fine.Status = domain.FineWaived
	}
	fine.AppealStatus = &decision
	fine.DecidedBy = &decidedBy
	fine.DecidedAt = &now
	fine.DecisionNote = input.Note
	if err := s.fineRepo.Update(ctx, fine, domain.FineUnpaid); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.NewAudit(actor.UserID, domain.AuditDecideAppeal, entityType, fine.ID, before, fine, meta))
	s.notifier.Notify(ctx, fine.ResidentID, domain.NotifAppealDecided, map[string]string{
		"fine_id":  fine.ID.String(),
		"decision": string(decision),
		"message":  fmt.Sprintf("Your appeal was %s", decision),
	})
	s.log.WithFields(logrus.Fields{"fine_id": fine.ID, "decision": decision}).Debug("appeal decided")
	return fine, nil
}
