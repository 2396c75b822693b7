package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Data      json.RawMessage  `json:"data,omitempty" db:"data"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifMaintenanceStatus NotificationType = "MAINTENANCE_STATUS"
	NotifComplaintStatus   NotificationType = "COMPLAINT_STATUS"
	NotifComplaintClaimed  NotificationType = "COMPLAINT_CLAIMED"
	NotifNewComment        NotificationType = "NEW_COMMENT"
	NotifRoomAssigned      NotificationType = "ROOM_ASSIGNED"
	NotifRoomRevoked       NotificationType = "ROOM_REVOKED"
	NotifFineIssued        NotificationType = "FINE_ISSUED"
	NotifAppealDecided     NotificationType = "APPEAL_DECIDED"
)
