package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/handlers"
	"github.com/prompthive/prompthive/internal/middleware"
	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the webhook route
	webhookLimiter := middleware.NewRateLimiter(10, 20)

	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/ping", healthHandler.Ping)
		api.GET("/health", healthHandler.CheckHealth)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Public catalog: listing, view-counted detail, anonymous rating and likes
		promptHandler := handlers.NewPromptHandler(models.GetDB())
		api.GET("/prompts", promptHandler.List)
		api.GET("/prompts/:id", promptHandler.Get)
		api.POST("/prompts/:id/rate", promptHandler.Rate)
		api.POST("/prompts/:id/like", promptHandler.Like)

		// Public pricing table
		membershipHandler := handlers.NewMembershipHandler(models.GetDB())
		api.GET("/tiers", membershipHandler.ListTiers)

		// Billing webhook (public with signature verification)
		api.POST("/webhooks/billing", webhookLimiter.Middleware(), svc.webhookHandler.HandleBilling)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Prompts
			protected.GET("/prompts/mine", promptHandler.Mine)
			protected.POST("/prompts", promptHandler.Create)
			protected.PUT("/prompts/:id", promptHandler.Update)
			protected.DELETE("/prompts/:id", promptHandler.Archive)

			// Generators (quota gated)
			enhanceHandler := handlers.NewEnhanceHandler(models.GetDB(), svc.usageTracker, svc.aiService)
			protected.POST("/prompts/enhance", enhanceHandler.Enhance)
			protected.POST("/prompts/generate", enhanceHandler.Generate)
			protected.POST("/prompts/improve", enhanceHandler.Improve)
			protected.GET("/usage", enhanceHandler.Usage)

			// Membership
			protected.GET("/user/membership", membershipHandler.GetMine)
			protected.GET("/user/billing", membershipHandler.GetBilling)
			protected.POST("/user/subscription/cancel", membershipHandler.CancelSubscription)

			// Dashboard (analytics entitlement checked inside)
			dashboardHandler := handlers.NewDashboardHandler(models.GetDB())
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Prompt moderation
			admin.PUT("/prompts/:id/featured", promptHandler.SetFeatured)
			admin.PUT("/prompts/:id/verified", promptHandler.SetVerified)

			// Users
			userHandler := handlers.NewUserHandler(models.GetDB())
			admin.GET("/users", userHandler.List)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			// LLM Configs
			llmConfigHandler := handlers.NewLLMConfigHandler(models.GetDB())
			admin.GET("/llm-configs", llmConfigHandler.List)
			admin.GET("/llm-configs/:id", llmConfigHandler.Get)
			admin.POST("/llm-configs", llmConfigHandler.Create)
			admin.PUT("/llm-configs/:id", llmConfigHandler.Update)
			admin.DELETE("/llm-configs/:id", llmConfigHandler.Delete)

			// Audit logs
			auditHandler := handlers.NewAuditLogHandler(models.GetDB())
			admin.GET("/audit-logs", auditHandler.List)
		}
	}
}
