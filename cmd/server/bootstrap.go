package main

import (
	"context"
	"time"

	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/handlers"
	"github.com/laporwarga/backend/internal/imagehost"
	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/internal/utils"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/laporwarga/backend/pkg/validation"
	"github.com/redis/go-redis/v9"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg         *config.Config
	redis       *redis.Client
	taskQueue   services.TaskQueue
	worker      *services.Worker
	maintenance *services.MaintenanceService

	authHandler      *handlers.AuthHandler
	uploadHandler    *handlers.UploadHandler
	complaintHandler *handlers.ComplaintHandler
	newsHandler      *handlers.NewsHandler
	userHandler      *handlers.UserHandler
	chatbotHandler   *handlers.ChatbotHandler
	dashboardHandler *handlers.DashboardHandler
	systemLogHandler *handlers.SystemLogHandler
	llmConfigHandler *handlers.LLMConfigHandler
	configHandler    *handlers.SystemConfigHandler
	healthHandler    *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)
	if err := validation.InstallGin(); err != nil {
		logger.Fatalf("Failed to install validators: %v", err)
	}

	if err := models.InitDB(&cfg.Database, cfg.Server.Mode); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}
	db := models.GetDB()

	services.InitSystemLogger(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb := services.NewRedisClient(ctx, &cfg.Redis)
	if cfg.Redis.Enabled && rdb == nil {
		logger.Warnf("[Bootstrap] Redis unreachable at %s, OTP codes will be kept in the database", cfg.Redis.Addr)
	}
	otpStore := services.NewOTPStore(db, rdb)

	// Background tasks: OTP mail and admin notifications
	taskHandler := services.NewTaskHandler(
		db,
		services.NewEmailService(&cfg.SMTP),
		services.NewNotificationService(&cfg.Telegram),
		cfg.OTP.TTLMinutes,
	)
	taskQueue := services.InitTaskQueue(cfg)
	var worker *services.Worker
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(taskHandler.Process)
	} else {
		worker = services.InitWorker(&cfg.Redis)
		worker.SetProcessor(taskHandler.Process)
		if err := worker.Start(); err != nil {
			logger.Errorf("[Bootstrap] Failed to start worker: %v", err)
		}
	}

	uploads := services.NewUploadService(imagehost.New(&cfg.Upload), &cfg.Upload)
	authService := services.NewAuthService(db, cfg, otpStore, taskQueue)
	configService := services.NewSystemConfigService(db)
	chatbotService := services.NewChatbotService(db, services.NewAIService(db, &cfg.OpenAI), &cfg.Chatbot)

	if err := authService.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	maintenance := services.NewMaintenanceService(db)
	if err := maintenance.StartScheduler(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start maintenance scheduler")
	}

	return &appServices{
		cfg:         cfg,
		redis:       rdb,
		taskQueue:   taskQueue,
		worker:      worker,
		maintenance: maintenance,

		authHandler:      handlers.NewAuthHandler(authService, configService, cfg),
		uploadHandler:    handlers.NewUploadHandler(uploads),
		complaintHandler: handlers.NewComplaintHandler(services.NewComplaintService(db, taskQueue)),
		newsHandler:      handlers.NewNewsHandler(services.NewNewsService(db, uploads), services.NewCommentService(db)),
		userHandler:      handlers.NewUserHandler(services.NewUserService(db, uploads), authService),
		chatbotHandler:   handlers.NewChatbotHandler(chatbotService),
		dashboardHandler: handlers.NewDashboardHandler(db),
		systemLogHandler: handlers.NewSystemLogHandler(db),
		llmConfigHandler: handlers.NewLLMConfigHandler(db),
		configHandler:    handlers.NewSystemConfigHandler(db),
		healthHandler:    handlers.NewHealthHandler(db),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.maintenance.StopScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}
