package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"asrama/internal/config"
	"asrama/internal/domain"
	"asrama/internal/handler"
	"asrama/internal/middleware"
	"asrama/internal/pkg/authz"
	"asrama/internal/pkg/i18n"
	"asrama/internal/repository"
	"asrama/internal/service"
	"asrama/internal/service/attachment"
	"asrama/internal/service/identity"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg)
	if envErr != nil {
		logger.Info("No .env file found, using environment variables")
	}

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	if err := i18n.LoadTranslations(cfg.LocalesPath, cfg.DefaultLocale); err != nil {
		logger.WithError(err).Warn("Failed to load translations, falling back to built-in messages")
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	minioClient, err := config.NewMinIOClient(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to MinIO")
	}

	authorizer, err := authz.NewAuthorizer(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise authorization")
	}

	repos := repository.NewRepositories(db)
	store := attachment.NewMinIOStore(minioClient, cfg.MinIOBucket)
	services := service.NewServices(repos, redis, store, cfg, logger)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestInfo())

	setupRoutes(app, handlers, services.Identity, authorizer)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server")
		if err := app.Shutdown(); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.WithField("port", cfg.Port).Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, identityService identity.Service, az *authz.Authorizer) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	can := func(obj, act string) fiber.Handler {
		return middleware.RequirePermission(az, obj, act)
	}

	protected := app.Group("/api/v1", middleware.AuthRequired(identityService))

	maintenance := protected.Group("/maintenance")
	maintenance.Post("/", can(authz.ObjMaintenance, authz.ActCreate), h.Maintenance.Create)
	maintenance.Get("/", can(authz.ObjMaintenance, authz.ActRead), h.Maintenance.List)
	maintenance.Get("/:id", can(authz.ObjMaintenance, authz.ActRead), h.Maintenance.Get)
	maintenance.Patch("/:id", can(authz.ObjMaintenance, authz.ActUpdate), h.Maintenance.Update)
	maintenance.Delete("/:id", can(authz.ObjMaintenance, authz.ActDelete), h.Maintenance.Delete)
	maintenance.Post("/:id/status", can(authz.ObjMaintenance, authz.ActTransition), h.Maintenance.UpdateStatus)
	maintenance.Post("/:id/revert", can(authz.ObjMaintenance, authz.ActTransition), h.Maintenance.Revert)
	maintenance.Get("/:id/history", can(authz.ObjMaintenance, authz.ActRead), h.Maintenance.History)
	maintenance.Get("/:id/comments", can(authz.ObjMaintenance, authz.ActRead), h.Comment.List(domain.KindMaintenance))
	maintenance.Post("/:id/comments", can(authz.ObjMaintenance, authz.ActComment), h.Comment.Create(domain.KindMaintenance))
	maintenance.Post("/:id/attachments", can(authz.ObjAttachment, authz.ActCreate), h.Attachment.Register)
	maintenance.Delete("/:id/attachments/:attachmentId", can(authz.ObjAttachment, authz.ActDelete), h.Attachment.Remove)

	complaints := protected.Group("/complaints")
	complaints.Post("/", can(authz.ObjComplaint, authz.ActCreate), h.Complaint.Create)
	complaints.Get("/", can(authz.ObjComplaint, authz.ActRead), h.Complaint.List)
	complaints.Get("/:id", can(authz.ObjComplaint, authz.ActRead), h.Complaint.Get)
	complaints.Post("/:id/claim", can(authz.ObjComplaint, authz.ActClaim), h.Complaint.Claim)
	complaints.Post("/:id/status", can(authz.ObjComplaint, authz.ActTransition), h.Complaint.UpdateStatus)
	complaints.Post("/:id/revert", can(authz.ObjComplaint, authz.ActTransition), h.Complaint.Revert)
	complaints.Post("/:id/drop", can(authz.ObjComplaint, authz.ActDrop), h.Complaint.Drop)
	complaints.Get("/:id/history", can(authz.ObjComplaint, authz.ActRead), h.Complaint.History)
	complaints.Get("/:id/comments", can(authz.ObjComplaint, authz.ActRead), h.Comment.List(domain.KindComplaint))
	complaints.Post("/:id/comments", can(authz.ObjComplaint, authz.ActComment), h.Comment.Create(domain.KindComplaint))

	comments := protected.Group("/comments")
	comments.Put("/:commentId", h.Comment.Update)
	comments.Delete("/:commentId", h.Comment.Delete)

	assignments := protected.Group("/assignments")
	assignments.Post("/", can(authz.ObjAssignment, authz.ActCreate), h.Assignment.AssignOne)
	assignments.Post("/bulk", can(authz.ObjAssignment, authz.ActCreate), h.Assignment.AssignBulk)
	assignments.Post("/revoke", can(authz.ObjAssignment, authz.ActRevoke), h.Assignment.Revoke)
	assignments.Get("/residents/:id", can(authz.ObjAssignment, authz.ActRead), h.Assignment.Current)
	assignments.Get("/rooms/:id", can(authz.ObjAssignment, authz.ActRead), h.Assignment.ListByRoom)

	fines := protected.Group("/fines")
	fines.Post("/", can(authz.ObjFine, authz.ActCreate), h.Fine.Issue)
	fines.Get("/", can(authz.ObjFine, authz.ActRead), h.Fine.List)
	fines.Get("/:id", can(authz.ObjFine, authz.ActRead), h.Fine.Get)
	fines.Post("/:id/pay", can(authz.ObjFine, authz.ActPay), h.Fine.Pay)
	fines.Post("/:id/appeal", can(authz.ObjFine, authz.ActAppeal), h.Fine.Appeal)
	fines.Post("/:id/appeal/decision", can(authz.ObjFine, authz.ActDecide), h.Fine.DecideAppeal)

	notifications := protected.Group("/notifications")
	notifications.Get("/", can(authz.ObjNotification, authz.ActRead), h.Notification.List)
	notifications.Get("/unread-count", can(authz.ObjNotification, authz.ActRead), h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", can(authz.ObjNotification, authz.ActUpdate), h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", can(authz.ObjNotification, authz.ActUpdate), h.Notification.MarkAllAsRead)

	protected.Get("/dashboard", can(authz.ObjDashboard, authz.ActRead), h.Dashboard.GetStats)

	protected.Get("/audit/recent", can(authz.ObjAudit, authz.ActRead), h.Audit.GetRecentActivities)
}

