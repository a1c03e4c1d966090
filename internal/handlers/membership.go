package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/middleware"
	"github.com/prompthive/prompthive/internal/services"
	"github.com/prompthive/prompthive/pkg/response"
	"gorm.io/gorm"
)

type MembershipHandler struct {
	membershipSvc *services.MembershipService
}

func NewMembershipHandler(db *gorm.DB) *MembershipHandler {
	return &MembershipHandler{
		membershipSvc: services.NewMembershipService(db),
	}
}

// ListTiers returns the public pricing table
// GET /api/tiers
func (h *MembershipHandler) ListTiers(c *gin.Context) {
	response.OK(c, gin.H{"tiers": services.AllTiers()})
}

// GetMine returns the caller's membership with the tier's entitlements
// GET /api/user/membership
func (h *MembershipHandler) GetMine(c *gin.Context) {
	membership, err := h.membershipSvc.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	tier, _ := services.GetTier(membership.Tier)
	response.OK(c, gin.H{
		"membership":   membership,
		"entitlements": tier,
	})
}

// GetBilling returns the caller's billing period bookkeeping
// GET /api/user/billing
func (h *MembershipHandler) GetBilling(c *gin.Context) {
	membership, err := h.membershipSvc.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"tier":                 membership.Tier,
		"current_period_start": membership.CurrentPeriodStart,
		"current_period_end":   membership.CurrentPeriodEnd,
		"cancel_at_period_end": membership.CancelAtPeriodEnd,
	})
}

// CancelSubscription flags the membership to lapse at period end. The
// actual downgrade arrives later through the billing webhook.
// POST /api/user/subscription/cancel
func (h *MembershipHandler) CancelSubscription(c *gin.Context) {
	userID := middleware.GetUserID(c)

	membership, err := h.membershipSvc.MarkCancelAtPeriodEnd(userID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	services.AuditInfo("membership", "CancelRequested", "subscription cancellation requested", &userID, c.ClientIP(), map[string]interface{}{
		"tier": membership.Tier,
	})
	response.OK(c, membership)
}
