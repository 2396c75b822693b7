package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"asrama/internal/config"
	"asrama/internal/repository"
	"asrama/internal/service/assignment"
	"asrama/internal/service/attachment"
	"asrama/internal/service/audit"
	"asrama/internal/service/comment"
	"asrama/internal/service/complaint"
	"asrama/internal/service/dashboard"
	"asrama/internal/service/fine"
	"asrama/internal/service/identity"
	"asrama/internal/service/maintenance"
	"asrama/internal/service/notification"
)

type Services struct {
	Identity     identity.Service
	Maintenance  maintenance.Service
	Complaint    complaint.Service
	Comment      comment.Service
	Assignment   assignment.Service
	Attachment   attachment.Service
	Fine         fine.Service
	Audit        audit.Service
	Notification notification.Service
	Dashboard    dashboard.Service
}

func NewServices(repos *repository.Repositories, redis *redis.Client, store attachment.ObjectStore, cfg *config.Config, logger *logrus.Logger) *Services {
	identityService := identity.NewService(repos.User, cfg.JWTSecret, cfg.JWTIssuer)
	auditService := audit.NewService(repos.AuditLog, logger)
	notificationService := notification.NewService(repos.Notification, logger)
	dashboardService := dashboard.NewService(repos.Maintenance, repos.Complaint, repos.Room, redis, cfg.CacheTTL, logger)

	maintenanceService := maintenance.NewService(
		repos.Maintenance,
		repos.Assignment,
		repos.Attachment,
		auditService,
		notificationService,
		dashboardService,
		logger,
	)
	complaintService := complaint.NewService(
		repos.Complaint,
		repos.Comment,
		repos.Assignment,
		auditService,
		notificationService,
		dashboardService,
		logger,
	)
	commentService := comment.NewService(
		repos.Comment,
		repos.Maintenance,
		repos.Complaint,
		repos.User,
		notificationService,
		redis,
		cfg.CacheTTL,
		logger,
	)
	assignmentService := assignment.NewService(
		repos.Assignment,
		repos.Room,
		repos.User,
		auditService,
		notificationService,
		dashboardService,
		logger,
	)
	attachmentService := attachment.NewService(
		repos.Attachment,
		repos.Maintenance,
		store,
		attachment.Limits{MaxCount: cfg.MaxAttachments, MaxBytes: cfg.MaxAttachmentBytes},
		logger,
	)
	fineService := fine.NewService(repos.Fine, repos.User, repos.Assignment, auditService, notificationService, logger)

	return &Services{
		Identity:     identityService,
		Maintenance:  maintenanceService,
		Complaint:    complaintService,
		Comment:      commentService,
		Assignment:   assignmentService,
		Attachment:   attachmentService,
		Fine:         fineService,
		Audit:        auditService,
		Notification: notificationService,
		Dashboard:    dashboardService,
	}
}
