package services

import (
	"errors"
	"time"

	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/pkg/response"
	"gorm.io/gorm"
)

// MembershipService manages the per-user membership row. Tier changes
// rewrite every entitlement column in a single UPDATE so a reader never
// observes a partially applied tier.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// GetByUserID returns the user's membership, creating a FREE one if the
// user predates the memberships table.
func (s *MembershipService) GetByUserID(userID uint) (*models.Membership, error) {
	var m models.Membership
	err := s.db.Where("user_id = ?", userID).First(&m).Error
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.CreateFree(userID)
}

// CreateFree provisions the default FREE membership for a new user.
func (s *MembershipService) CreateFree(userID uint) (*models.Membership, error) {
	cfg, _ := GetTier(models.TierFree)
	m := &models.Membership{
		UserID:             userID,
		Tier:               cfg.Tier,
		CustomPromptsLimit: cfg.CustomPromptsLimit,
		ForumAccessLevel:   cfg.ForumAccessLevel,
		SupportPriority:    cfg.SupportPriority,
		AnalyticsAccess:    cfg.AnalyticsAccess,
		APIAccess:          cfg.APIAccess,
		CustomBranding:     cfg.CustomBranding,
	}
	if err := s.db.Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ApplyTier overwrites the membership's tier and every entitlement column
// together, with optional billing-period bookkeeping from the processor.
func (s *MembershipService) ApplyTier(userID uint, tier string, periodStart, periodEnd *time.Time, cancelAtPeriodEnd bool) error {
	cfg, ok := GetTier(tier)
	if !ok {
		return response.NewBadRequest("unknown membership tier: " + tier)
	}

	// Ensure the row exists before the atomic update.
	if _, err := s.GetByUserID(userID); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"tier":                 cfg.Tier,
		"custom_prompts_limit": cfg.CustomPromptsLimit,
		"forum_access_level":   cfg.ForumAccessLevel,
		"support_priority":     cfg.SupportPriority,
		"analytics_access":     cfg.AnalyticsAccess,
		"api_access":           cfg.APIAccess,
		"custom_branding":      cfg.CustomBranding,
		"cancel_at_period_end": cancelAtPeriodEnd,
	}
	if periodStart != nil {
		updates["current_period_start"] = *periodStart
	}
	if periodEnd != nil {
		updates["current_period_end"] = *periodEnd
	}

	return s.db.Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

// Downgrade drops the membership to FREE, clearing billing bookkeeping.
// Used when the processor reports a cancellation.
func (s *MembershipService) Downgrade(userID uint) error {
	cfg, _ := GetTier(models.TierFree)

	if _, err := s.GetByUserID(userID); err != nil {
		return err
	}

	return s.db.Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"tier":                 cfg.Tier,
			"custom_prompts_limit": cfg.CustomPromptsLimit,
			"forum_access_level":   cfg.ForumAccessLevel,
			"support_priority":     cfg.SupportPriority,
			"analytics_access":     cfg.AnalyticsAccess,
			"api_access":           cfg.APIAccess,
			"custom_branding":      cfg.CustomBranding,
			"cancel_at_period_end": false,
			"current_period_start": nil,
			"current_period_end":   nil,
		}).Error
}

// MarkCancelAtPeriodEnd flags the membership to lapse when the paid period
// ends. The actual downgrade arrives later via the processor webhook.
func (s *MembershipService) MarkCancelAtPeriodEnd(userID uint) (*models.Membership, error) {
	m, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if m.Tier == models.TierFree {
		return nil, response.NewBadRequest("no paid subscription to cancel")
	}

	if err := s.db.Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Update("cancel_at_period_end", true).Error; err != nil {
		return nil, err
	}
	return s.GetByUserID(userID)
}

// UpdatePeriod mirrors an invoice-paid event's billing cycle.
func (s *MembershipService) UpdatePeriod(userID uint, periodStart, periodEnd *time.Time) error {
	updates := map[string]interface{}{}
	if periodStart != nil {
		updates["current_period_start"] = *periodStart
	}
	if periodEnd != nil {
		updates["current_period_end"] = *periodEnd
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
