package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	UserName   *string         `json:"user_name,omitempty" db:"user_name"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	IPAddress  *string         `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string         `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`

	// AnonymousActor marks entries written by the submitter of an anonymous
	// complaint.
	AnonymousActor bool `json:"-" db:"anonymous_actor"`
}

const (
	AuditAdvanceStatus = "ADVANCE_STATUS"
	AuditRevertStatus  = "REVERT_STATUS"
	AuditAutoReview    = "AUTO_REVIEW"
	AuditClaim         = "CLAIM_COMPLAINT"
	AuditDrop          = "DROP_COMPLAINT"
	AuditAssignRoom    = "ASSIGN_ROOM"
	AuditRevokeRoom    = "REVOKE_ROOM"
	AuditIssueFine     = "ISSUE_FINE"
	AuditDecideAppeal  = "DECIDE_APPEAL"
)

// MaskAnonymousActors hides who wrote entries flagged AnonymousActor from
// everyone but that author. Stored rows are not touched.
func MaskAnonymousActors(logs []AuditLog, viewer Actor) []AuditLog {
	for i := range logs {
		if !logs[i].AnonymousActor || logs[i].UserID == viewer.UserID {
			continue
		}
		logs[i].UserID = uuid.Nil
		logs[i].UserName = nil
		logs[i].IPAddress = nil
		logs[i].UserAgent = nil
	}
	return logs
}

// RequestMeta is the client information recorded alongside audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

func NewStatusAudit(actor uuid.UUID, action, entityType string, entityID uuid.UUID, from, to RequestStatus, meta *RequestMeta) *AuditLog {
	return NewAudit(actor, action, entityType, entityID,
		map[string]RequestStatus{"status": from},
		map[string]RequestStatus{"status": to},
		meta)
}

// NewAudit builds an entry with JSON encoded before and after values.
func NewAudit(actor uuid.UUID, action, entityType string, entityID uuid.UUID, oldValue, newValue any, meta *RequestMeta) *AuditLog {
	log := &AuditLog{
		ID:         uuid.New(),
		UserID:     actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   encodeAuditValue(oldValue),
		NewValue:   encodeAuditValue(newValue),
		CreatedAt:  time.Now(),
	}
	if meta != nil {
		if meta.IPAddress != "" {
			ip := meta.IPAddress
			log.IPAddress = &ip
		}
		if meta.UserAgent != "" {
			ua := meta.UserAgent
			log.UserAgent = &ua
		}
	}
	return log
}

func encodeAuditValue(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(data)
}
