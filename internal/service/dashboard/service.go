package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"asrama/internal/domain"
	"asrama/internal/pkg/metrics"
	"asrama/internal/repository"
)

type Stats struct {
	DormID      uuid.UUID                      `json:"dorm_id"`
	Maintenance map[domain.RequestStatus]int64 `json:"maintenance"`
	Complaints  map[domain.RequestStatus]int64 `json:"complaints"`
	Rooms       []domain.RoomOccupancy         `json:"rooms"`
	Capacity    int                            `json:"capacity"`
	Occupied    int                            `json:"occupied"`
	GeneratedAt time.Time                      `json:"generated_at"`
}

// Invalidator drops cached figures for a dorm after a write.
type Invalidator interface {
	Invalidate(ctx context.Context, dormID uuid.UUID)
}

type Service interface {
	Invalidator
	GetStats(ctx context.Context, actor domain.Actor, dormID *uuid.UUID) (*Stats, error)
}

type service struct {
	maintenanceRepo repository.MaintenanceRepository
	complaintRepo   repository.ComplaintRepository
	roomRepo        repository.RoomRepository
	redis           *redis.Client
	ttl             time.Duration
	log             *logrus.Entry
}

func NewService(
	maintenanceRepo repository.MaintenanceRepository,
	complaintRepo repository.ComplaintRepository,
	roomRepo repository.RoomRepository,
	redis *redis.Client,
	ttl time.Duration,
	logger *logrus.Logger,
) Service {
	return &service{
		maintenanceRepo: maintenanceRepo,
		complaintRepo:   complaintRepo,
		roomRepo:        roomRepo,
		redis:           redis,
		ttl:             ttl,
		log:             logrus.NewEntry(logger).WithField("component", "dashboard"),
	}
}

func cacheKey(dormID uuid.UUID) string {
	return "dashboard:stats:" + dormID.String()
}

// GetStats returns the figures of the actor's dorm. Admins pick the dorm
// explicitly.
func (s *service) GetStats(ctx context.Context, actor domain.Actor, dormID *uuid.UUID) (*Stats, error) {
	target, err := resolveDorm(actor, dormID)
	if err != nil {
		return nil, err
	}

	key := cacheKey(target)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				metrics.RecordCacheRequest("dashboard", true)
				return &stats, nil
			}
		}
		metrics.RecordCacheRequest("dashboard", false)
	}

	maintenance, err := s.maintenanceRepo.CountByStatus(ctx, target)
	if err != nil {
		return nil, err
	}

	complaints, err := s.complaintRepo.CountByStatus(ctx, target)
	if err != nil {
		return nil, err
	}

	rooms, err := s.roomRepo.ListOccupancyByDorm(ctx, target)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		DormID:      target,
		Maintenance: maintenance,
		Complaints:  complaints,
		Rooms:       rooms,
		GeneratedAt: time.Now(),
	}
	for i := range stats.Rooms {
		stats.Rooms[i].Available = stats.Rooms[i].Capacity - stats.Rooms[i].Occupied
		stats.Capacity += stats.Rooms[i].Capacity
		stats.Occupied += stats.Rooms[i].Occupied
	}

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, key, statsJSON, s.ttl).Err(); err != nil {
				s.log.WithError(err).WithField("dorm_id", target).Warn("failed to cache dashboard stats")
			}
		}
	}

	return stats, nil
}

func (s *service) Invalidate(ctx context.Context, dormID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey(dormID)).Err(); err != nil {
		s.log.WithError(err).WithField("dorm_id", dormID).Warn("failed to invalidate dashboard cache")
	}
}

func resolveDorm(actor domain.Actor, dormID *uuid.UUID) (uuid.UUID, error) {
	if !actor.IsStaff() {
		return uuid.Nil, domain.ErrNotAuthorized
	}
	if dormID != nil {
		if !actor.InDormScope(*dormID) {
			return uuid.Nil, domain.ErrNotAuthorized
		}
		return *dormID, nil
	}
	if actor.DormID == nil {
		return uuid.Nil, domain.NewValidationError("dorm_id", "is required")
	}
	return *actor.DormID, nil
}
