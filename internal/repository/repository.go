package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Room         RoomRepository
	Assignment   AssignmentRepository
	Maintenance  MaintenanceRepository
	Complaint    ComplaintRepository
	Comment      CommentRepository
	Attachment   AttachmentRepository
	Fine         FineRepository
	AuditLog     AuditLogRepository
	Notification NotificationRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Room:         NewRoomRepository(db),
		Assignment:   NewAssignmentRepository(db),
		Maintenance:  NewMaintenanceRepository(db),
		Complaint:    NewComplaintRepository(db),
		Comment:      NewCommentRepository(db),
		Attachment:   NewAttachmentRepository(db),
		Fine:         NewFineRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
