package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/services"
	"github.com/prompthive/prompthive/pkg/response"
	"gorm.io/gorm"
)

// AuditLogHandler exposes the audit trail to admins.
type AuditLogHandler struct {
	service *services.AuditLogService
}

func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{
		service: services.NewAuditLogService(db),
	}
}

// List returns audit entries, newest first
// GET /api/admin/audit-logs
func (h *AuditLogHandler) List(c *gin.Context) {
	var req services.AuditLogListRequest
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
