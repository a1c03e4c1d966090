package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/services"
	"github.com/prompthive/prompthive/pkg/response"
	"gorm.io/gorm"
)

// LLMConfigHandler manages completion-API provider configs (admin only).
type LLMConfigHandler struct {
	service *services.LLMConfigService
}

func NewLLMConfigHandler(db *gorm.DB) *LLMConfigHandler {
	return &LLMConfigHandler{
		service: services.NewLLMConfigService(db),
	}
}

// List returns provider configs with masked API keys
// GET /api/admin/llm-configs
func (h *LLMConfigHandler) List(c *gin.Context) {
	var req services.LLMConfigListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.List(&req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, result)
}

// Get returns one provider config
// GET /api/admin/llm-configs/:id
func (h *LLMConfigHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid ID")
		return
	}

	cfg, err := h.service.GetByID(uint(id))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, cfg)
}

// Create adds a provider config
// POST /api/admin/llm-configs
func (h *LLMConfigHandler) Create(c *gin.Context) {
	var req services.CreateLLMConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cfg, err := h.service.Create(&req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, cfg)
}

// Update edits a provider config
// PUT /api/admin/llm-configs/:id
func (h *LLMConfigHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid ID")
		return
	}

	var req services.UpdateLLMConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cfg, err := h.service.Update(uint(id), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, cfg)
}

// Delete removes a provider config
// DELETE /api/admin/llm-configs/:id
func (h *LLMConfigHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid ID")
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{"message": "config deleted"})
}
