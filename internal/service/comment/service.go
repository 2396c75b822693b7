package comment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/pkg/metrics"
	"asrama/internal/pkg/validate"
	"asrama/internal/repository"
	"asrama/internal/service/notification"
)

// scanBatch is the COUNT hint for cache invalidation scans.
const scanBatch = 100

type Service interface {
	Create(ctx context.Context, actor domain.Actor, kind domain.RequestKind, requestID uuid.UUID, input domain.CreateCommentInput) (*domain.Comment, error)
	List(ctx context.Context, actor domain.Actor, kind domain.RequestKind, requestID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateCommentInput) (*domain.Comment, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type service struct {
	commentRepo     repository.CommentRepository
	maintenanceRepo repository.MaintenanceRepository
	complaintRepo   repository.ComplaintRepository
	userRepo        repository.UserRepository
	notifier        notification.Notifier
	redis           *redis.Client
	ttl             time.Duration
	log             *logrus.Entry
}

func NewService(
	commentRepo repository.CommentRepository,
	maintenanceRepo repository.MaintenanceRepository,
	complaintRepo repository.ComplaintRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
	redis *redis.Client,
	ttl time.Duration,
	logger *logrus.Logger,
) Service {
	return &service{
		commentRepo:     commentRepo,
		maintenanceRepo: maintenanceRepo,
		complaintRepo:   complaintRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		redis:           redis,
		ttl:             ttl,
		log:             logrus.NewEntry(logger).WithField("component", "comment"),
	}
}

// thread is the request a comment hangs off, reduced to what the access
// rules need.
type thread struct {
	residentID uuid.UUID
	dormID     uuid.UUID
	closed     bool
	// staffID is the staff member to tell about resident comments.
	staffID   *uuid.UUID
	complaint *domain.Complaint
}

func (s *service) loadThread(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID) (*thread, error) {
	switch kind {
	case domain.KindMaintenance:
		req, err := s.maintenanceRepo.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		return &thread{
			residentID: req.ResidentID,
			dormID:     req.DormID,
			closed:     domain.NewLifecycle(domain.MaintenancePolicy).IsClosed(req.Status),
			staffID:    req.InProgressBy,
		}, nil
	case domain.KindComplaint:
		c, err := s.complaintRepo.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		return &thread{
			residentID: c.ResidentID,
			dormID:     c.DormID,
			closed:     domain.NewLifecycle(domain.ComplaintPolicy).IsClosed(c.Status),
			staffID:    c.ManagedBy,
			complaint:  c,
		}, nil
	default:
		return nil, domain.NewValidationError("request_kind", "must be maintenance or complaint")
	}
}

func (t *thread) canRead(actor domain.Actor) bool {
	if actor.IsStudent() {
		return t.residentID == actor.UserID
	}
	if t.complaint != nil && t.complaint.IsManagedBy(actor.UserID) {
		return true
	}
	return actor.InDormScope(t.dormID)
}

// canWrite applies the claim gate on complaints: the only staff member who
// may comment is the manager.
func (t *thread) canWrite(actor domain.Actor) bool {
	if actor.IsStudent() {
		return t.residentID == actor.UserID
	}
	if t.complaint != nil {
		return t.complaint.IsManagedBy(actor.UserID)
	}
	return actor.InDormScope(t.dormID)
}

func (s *service) Create(ctx context.Context, actor domain.Actor, kind domain.RequestKind, requestID uuid.UUID, input domain.CreateCommentInput) (*domain.Comment, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	t, err := s.loadThread(ctx, kind, requestID)
	if err != nil {
		return nil, err
	}
	if !t.canWrite(actor) {
		return nil, domain.ErrNotAuthorized
	}
	if t.closed {
		return nil, domain.ErrRequestClosed
	}

	comment := &domain.Comment{
		ID:          uuid.New(),
		RequestKind: kind,
		RequestID:   requestID,
		UserID:      actor.UserID,
		Content:     input.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if author, err := s.userRepo.GetByID(ctx, actor.UserID); err == nil {
		comment.User = &domain.CommentUser{ID: author.ID, FullName: author.FullName, AvatarURL: author.AvatarURL, Role: author.Role}
	}

	s.invalidate(ctx, kind, requestID)
	s.notifyThread(ctx, actor, t, comment)

	return comment, nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, kind domain.RequestKind, requestID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error) {
	params.Normalize()

	t, err := s.loadThread(ctx, kind, requestID)
	if err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, err
	}
	if !t.canRead(actor) {
		return domain.PaginatedResponse[domain.Comment]{}, domain.ErrNotAuthorized
	}

	result, err := s.listStored(ctx, kind, requestID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, err
	}

	result.Data = domain.MaskForViewer(result.Data, t.complaint, actor)
	return result, nil
}

// listStored returns comments exactly as stored. Masking is applied per
// viewer after the cache.
func (s *service) listStored(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error) {
	cacheKey := fmt.Sprintf("comments:%s:%s:page:%d:size:%d", kind, requestID, params.Page, params.PageSize)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var result domain.PaginatedResponse[domain.Comment]
			if json.Unmarshal([]byte(cached), &result) == nil {
				metrics.RecordCacheRequest("comments", true)
				return result, nil
			}
		}
		metrics.RecordCacheRequest("comments", false)
	}

	comments, total, err := s.commentRepo.ListByRequest(ctx, kind, requestID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, err
	}

	result := domain.NewPaginatedResponse(comments, params.Page, params.PageSize, total)

	if s.redis != nil {
		if resultJSON, err := json.Marshal(result); err == nil {
			_ = s.redis.Set(ctx, cacheKey, resultJSON, s.ttl).Err()
		}
	}

	return result, nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateCommentInput) (*domain.Comment, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	comment, err := s.loadOwnOpen(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	comment.Content = input.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidate(ctx, comment.RequestKind, comment.RequestID)
	return comment, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	comment, err := s.loadOwnOpen(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, comment.RequestKind, comment.RequestID)
	return nil
}

// loadOwnOpen returns a comment the actor wrote on a request that still
// accepts edits.
func (s *service) loadOwnOpen(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.UserID {
		return nil, domain.ErrNotAuthorized
	}

	t, err := s.loadThread(ctx, comment.RequestKind, comment.RequestID)
	if err != nil {
		return nil, err
	}
	if t.closed {
		return nil, domain.ErrRequestClosed
	}
	return comment, nil
}

func (s *service) invalidate(ctx context.Context, kind domain.RequestKind, requestID uuid.UUID) {
	if s.redis == nil {
		return
	}
	log := s.log.WithField("request_id", requestID)
	cachePattern := fmt.Sprintf("comments:%s:%s:*", kind, requestID)

	var keys []string
	iter := s.redis.Scan(ctx, 0, cachePattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.WithError(err).Warn("failed to scan comment cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		log.WithError(err).Warn("failed to invalidate comment cache")
	}
}

// notifyThread tells the other side of the conversation. Resident comments
// go to the staff member handling the request; staff comments go to the
// resident.
func (s *service) notifyThread(ctx context.Context, actor domain.Actor, t *thread, comment *domain.Comment) {
	recipient := t.residentID
	if actor.UserID == t.residentID {
		if t.staffID == nil {
			return
		}
		recipient = *t.staffID
	}

	s.notifier.Notify(ctx, recipient, domain.NotifNewComment, map[string]string{
		"comment_id":   comment.ID.String(),
		"request_kind": string(comment.RequestKind),
		"request_id":   comment.RequestID.String(),
	})
}
