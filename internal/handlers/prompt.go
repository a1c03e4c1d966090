package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/middleware"
	"github.com/prompthive/prompthive/internal/services"
	"github.com/prompthive/prompthive/pkg/response"
	"gorm.io/gorm"
)

type PromptHandler struct {
	promptSvc     *services.PromptService
	membershipSvc *services.MembershipService
}

func NewPromptHandler(db *gorm.DB) *PromptHandler {
	return &PromptHandler{
		promptSvc:     services.NewPromptService(db),
		membershipSvc: services.NewMembershipService(db),
	}
}

// List returns the public catalog, filtered and sorted
// GET /api/prompts
func (h *PromptHandler) List(c *gin.Context) {
	filter, err := services.FilterFromQuery(c.Request.URL.Query())
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.promptSvc.Search(filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, result)
}

// Get returns one prompt by its public ID and counts the view
// GET /api/prompts/:id
func (h *PromptHandler) Get(c *gin.Context) {
	prompt, err := h.promptSvc.GetByPublicID(c.Param("id"), true)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, prompt)
}

// Create submits a new prompt, subject to the caller's tier quota
// POST /api/prompts
func (h *PromptHandler) Create(c *gin.Context) {
	var sub services.PromptSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	membership, err := h.membershipSvc.GetByUserID(userID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	prompt, err := h.promptSvc.Create(userID, membership.CustomPromptsLimit, &sub)
	if err != nil {
		response.Fail(c, err)
		return
	}

	services.AuditInfo("prompt", "Create", "prompt created: "+prompt.Title, &userID, c.ClientIP(), map[string]interface{}{
		"prompt_id": prompt.PublicID,
	})
	response.Created(c, prompt)
}

// Mine lists the caller's own prompts, drafts included
// GET /api/prompts/mine
func (h *PromptHandler) Mine(c *gin.Context) {
	prompts, err := h.promptSvc.ListByOwner(middleware.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{"prompts": prompts, "total": len(prompts)})
}

// Update edits an owned prompt
// PUT /api/prompts/:id
func (h *PromptHandler) Update(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	prompt, err := h.promptSvc.Update(c.Param("id"),
		middleware.GetUserID(c), middleware.GetRole(c) == "admin", updates)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, prompt)
}

// Archive removes a prompt from the catalog
// DELETE /api/prompts/:id
func (h *PromptHandler) Archive(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.promptSvc.Archive(c.Param("id"), userID, middleware.GetRole(c) == "admin"); err != nil {
		response.Fail(c, err)
		return
	}

	services.AuditInfo("prompt", "Archive", "prompt archived", &userID, c.ClientIP(), map[string]interface{}{
		"prompt_id": c.Param("id"),
	})
	response.OK(c, gin.H{"message": "prompt archived"})
}

// Rate folds a 1..5 score into the prompt's running average
// POST /api/prompts/:id/rate
func (h *PromptHandler) Rate(c *gin.Context) {
	var req struct {
		Rating int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	prompt, err := h.promptSvc.Rate(c.Param("id"), req.Rating)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, prompt)
}

// Like bumps the like counter
// POST /api/prompts/:id/like
func (h *PromptHandler) Like(c *gin.Context) {
	prompt, err := h.promptSvc.Like(c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, prompt)
}

// SetFeatured toggles the editorial featured flag (admin only)
// PUT /api/admin/prompts/:id/featured
func (h *PromptHandler) SetFeatured(c *gin.Context) {
	h.setFlag(c, h.promptSvc.SetFeatured, "Featured")
}

// SetVerified toggles the editorial verified flag (admin only)
// PUT /api/admin/prompts/:id/verified
func (h *PromptHandler) SetVerified(c *gin.Context) {
	h.setFlag(c, h.promptSvc.SetVerified, "Verified")
}

func (h *PromptHandler) setFlag(c *gin.Context, set func(string, bool) error, action string) {
	value, err := strconv.ParseBool(c.DefaultQuery("value", "true"))
	if err != nil {
		response.BadRequest(c, "value must be true or false")
		return
	}

	if err := set(c.Param("id"), value); err != nil {
		response.Fail(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.AuditInfo("prompt", action, "moderation flag updated", &userID, c.ClientIP(), map[string]interface{}{
		"prompt_id": c.Param("id"),
		"value":     value,
	})
	response.OK(c, gin.H{"message": "flag updated"})
}
