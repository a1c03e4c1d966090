package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/internal/services"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
// GET /api/health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Published catalog size
	var publishedCount int64
	models.GetDB().Model(&models.Prompt{}).
		Where("status = ?", models.PromptStatusPublished).
		Count(&publishedCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "prompthive",
		"components": gin.H{
			"database": dbStatus,
			"queue":    queueMode,
		},
		"published_prompts": publishedCount,
	})
}

// Ping is a minimal liveness probe
// GET /api/ping
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}
