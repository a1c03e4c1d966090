package main

import (
	"github.com/prompthive/prompthive/internal/config"
	"github.com/prompthive/prompthive/internal/handlers"
	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/internal/services"
	"github.com/prompthive/prompthive/internal/utils"
	"github.com/prompthive/prompthive/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg            *config.Config
	usageTracker   services.UsageTracker
	aiService      *services.AIService
	billingService *services.BillingService
	cleanupService *services.CleanupService
	taskQueue      services.TaskQueue
	worker         *services.Worker
	authHandler    *handlers.AuthHandler
	webhookHandler *handlers.WebhookHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed the starter catalog
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize audit logger
	services.InitAuditLogger(models.GetDB())

	// Usage quota tracker (Redis when available, database otherwise)
	usageTracker := services.NewUsageTracker(&cfg.Redis, models.GetDB())

	// Completion API service
	aiService := services.NewAIService(models.GetDB(), &cfg.OpenAI)

	// Billing event processing: the webhook handler enqueues, the queue
	// processor applies membership changes.
	billingService := services.NewBillingService(models.GetDB())
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(billingService.ProcessTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(billingService.ProcessTask)
			worker.Start()
		}
	}

	// Nightly cleanup: stale usage counters and expired audit logs
	cleanupService := services.NewCleanupService(models.GetDB(), 30)
	cleanupService.StartScheduler()

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:            cfg,
		usageTracker:   usageTracker,
		aiService:      aiService,
		billingService: billingService,
		cleanupService: cleanupService,
		taskQueue:      taskQueue,
		worker:         worker,
		authHandler:    authHandler,
		webhookHandler: handlers.NewWebhookHandler(&cfg.Billing),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.cleanupService.StopScheduler()
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
