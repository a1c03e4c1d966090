package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/middleware"
	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/internal/services"
	"github.com/prompthive/prompthive/pkg/response"
	"gorm.io/gorm"
)

// EnhanceHandler serves the three generator endpoints. Every request is
// quota-checked first; for the improve endpoint that ordering is what
// keeps a denied request from reaching the paid completion API.
type EnhanceHandler struct {
	membershipSvc *services.MembershipService
	usageTracker  services.UsageTracker
	aiService     *services.AIService
}

func NewEnhanceHandler(db *gorm.DB, tracker services.UsageTracker, aiService *services.AIService) *EnhanceHandler {
	return &EnhanceHandler{
		membershipSvc: services.NewMembershipService(db),
		usageTracker:  tracker,
		aiService:     aiService,
	}
}

// checkQuota consumes one daily slot for the action, answering with 429
// when the tier's ceiling is reached.
func (h *EnhanceHandler) checkQuota(c *gin.Context, actionKey string) bool {
	userID := middleware.GetUserID(c)

	membership, err := h.membershipSvc.GetByUserID(userID)
	if err != nil {
		response.Fail(c, err)
		return false
	}

	limit := services.ActionLimit(membership.Tier, actionKey)
	allowed, err := h.usageTracker.CheckAndIncrement(c.Request.Context(), userID, actionKey, limit)
	if err != nil {
		response.Fail(c, err)
		return false
	}
	if !allowed {
		response.TooManyRequests(c, "daily quota reached for this action, upgrade your membership or try again tomorrow")
		return false
	}
	return true
}

// Enhance rewrites a prompt using a fixed enhancement guide
// POST /api/prompts/enhance
func (h *EnhanceHandler) Enhance(c *gin.Context) {
	var req struct {
		Prompt      string `json:"prompt" binding:"required"`
		EnhanceType string `json:"enhance_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if !h.checkQuota(c, services.ActionEnhance) {
		return
	}

	enhanced, guide, applied := services.BuildEnhancement(req.Prompt, req.EnhanceType)
	response.OK(c, gin.H{
		"enhanced_prompt": enhanced,
		"original":        req.Prompt,
		"guide":           guide,
		"enhance_type":    applied,
	})
}

// Generate builds a prompt for a topic in the requested style
// POST /api/prompts/generate
func (h *EnhanceHandler) Generate(c *gin.Context) {
	var req struct {
		Topic   string `json:"topic" binding:"required"`
		Style   string `json:"style"`
		UseCase string `json:"use_case"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		response.BadRequest(c, "topic is required")
		return
	}

	if !h.checkQuota(c, services.ActionGenerate) {
		return
	}

	text, applied := services.GenerationTemplate(req.Style, req.Topic, req.UseCase)
	response.OK(c, gin.H{
		"generated_prompt": text,
		"topic":            req.Topic,
		"use_case":         req.UseCase,
		"style":            applied,
	})
}

// Improve sends the prompt through the completion API
// POST /api/prompts/improve
func (h *EnhanceHandler) Improve(c *gin.Context) {
	var req struct {
		Prompt     string `json:"prompt" binding:"required"`
		PromptType string `json:"prompt_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	membership, err := h.membershipSvc.GetByUserID(userID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	// Quota first: a denied request must never reach the completion API.
	if !h.checkQuota(c, services.ActionImprove) {
		return
	}

	pro := membership.Tier != models.TierFree
	systemPrompt, applied := services.ImproveSystemPrompt(req.PromptType, pro)

	result, err := h.aiService.Complete(c.Request.Context(), &userID, services.ActionImprove, systemPrompt, req.Prompt)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"improved_prompt": result.Content,
		"prompt_type":     applied,
		"provider":        result.Provider,
		"model":           result.Model,
	})
}

// Usage reports today's consumed counts against the caller's limits
// GET /api/usage
func (h *EnhanceHandler) Usage(c *gin.Context) {
	userID := middleware.GetUserID(c)

	membership, err := h.membershipSvc.GetByUserID(userID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	actions := []string{services.ActionEnhance, services.ActionGenerate, services.ActionImprove}
	usage := make(map[string]gin.H, len(actions))
	for _, action := range actions {
		count, err := h.usageTracker.Count(c.Request.Context(), userID, action)
		if err != nil {
			response.Fail(c, err)
			return
		}
		usage[action] = gin.H{
			"used":  count,
			"limit": services.ActionLimit(membership.Tier, action),
		}
	}

	response.OK(c, gin.H{"tier": membership.Tier, "usage": usage})
}
