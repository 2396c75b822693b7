package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMaskAnonymousActors(t *testing.T) {
	resident := uuid.New()
	staff := Actor{UserID: uuid.New(), Role: RoleStaff}
	name, ip := "Rina", "10.0.0.7"

	logs := func() []AuditLog {
		return []AuditLog{
			{ID: uuid.New(), UserID: resident, UserName: &name, IPAddress: &ip, Action: AuditDrop, EntityType: "COMPLAINT", AnonymousActor: true},
			{ID: uuid.New(), UserID: staff.UserID, UserName: &name, Action: AuditClaim, EntityType: "COMPLAINT"},
		}
	}

	masked := MaskAnonymousActors(logs(), staff)
	assert.Equal(t, uuid.Nil, masked[0].UserID)
	assert.Nil(t, masked[0].UserName)
	assert.Nil(t, masked[0].IPAddress)
	assert.Equal(t, AuditDrop, masked[0].Action)
	assert.Equal(t, staff.UserID, masked[1].UserID)
	assert.NotNil(t, masked[1].UserName)

	own := MaskAnonymousActors(logs(), Actor{UserID: resident, Role: RoleStudent})
	assert.Equal(t, resident, own[0].UserID)
	assert.Equal(t, &name, own[0].UserName)
}
