package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/middleware"
	"github.com/prompthive/prompthive/internal/services"
	"github.com/prompthive/prompthive/pkg/response"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardSvc  *services.DashboardService
	membershipSvc *services.MembershipService
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		dashboardSvc:  services.NewDashboardService(db),
		membershipSvc: services.NewMembershipService(db),
	}
}

// GetStats returns marketplace-wide statistics. Detailed analytics are an
// entitlement: FREE members get a 403.
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	membership, err := h.membershipSvc.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	tier, _ := services.GetTier(membership.Tier)
	if !tier.AnalyticsAccess && middleware.GetRole(c) != "admin" {
		response.Forbidden(c, "analytics requires a PRO membership or higher")
		return
	}

	stats, err := h.dashboardSvc.GetStats()
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, stats)
}
