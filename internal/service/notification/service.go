package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/repository"
)

// Notifier is the sink other services report state changes to. Delivery is
// best effort and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType domain.NotificationType, payload map[string]string)
}

type Service interface {
	Notifier
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

const writeTimeout = 5 * time.Second

var titles = map[domain.NotificationType]string{
	domain.NotifMaintenanceStatus: "Maintenance request updated",
	domain.NotifComplaintStatus:   "Complaint updated",
	domain.NotifComplaintClaimed:  "Complaint picked up by staff",
	domain.NotifNewComment:        "New comment",
	domain.NotifRoomAssigned:      "Room assigned",
	domain.NotifRoomRevoked:       "Room assignment ended",
	domain.NotifFineIssued:        "New fine issued",
	domain.NotifAppealDecided:     "Fine appeal decided",
}

type service struct {
	notifRepo repository.NotificationRepository
	log       *logrus.Entry
	done      func()
}

func NewService(notifRepo repository.NotificationRepository, logger *logrus.Logger) Service {
	return &service{
		notifRepo: notifRepo,
		log:       logrus.NewEntry(logger).WithField("component", "notification"),
	}
}

// Notify stores the notification in the background. The request context is
// not used for the write so a finished HTTP request does not cancel it.
func (s *service) Notify(_ context.Context, userID uuid.UUID, notifType domain.NotificationType, payload map[string]string) {
	if userID == uuid.Nil {
		return
	}

	notif := Build(userID, notifType, payload)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if s.done != nil {
			defer s.done()
		}

		if err := s.notifRepo.Create(ctx, notif); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"type":    notifType,
			}).Warn("failed to store notification")
		}
	}()
}

// Build turns a payload into a stored notification. The "message" key, when
// present, becomes the message body.
func Build(userID uuid.UUID, notifType domain.NotificationType, payload map[string]string) *domain.Notification {
	title, ok := titles[notifType]
	if !ok {
		title = string(notifType)
	}

	message := payload["message"]
	if message == "" {
		message = title
	}

	data, _ := json.Marshal(payload)

	return &domain.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    json.RawMessage(data),
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Normalize()

	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, userID, id)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}
