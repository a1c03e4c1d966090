package models

import "time"

// Membership tiers.
const (
	TierFree       = "FREE"
	TierPro        = "PRO"
	TierPremium    = "PREMIUM"
	TierEnterprise = "ENTERPRISE"
)

// Membership is the one-to-one billing record for a user. The entitlement
// columns are always a pure function of Tier (see services.GetTier) and are
// rewritten together in a single UPDATE so no partially-downgraded state is
// ever observable.
type Membership struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Tier   string `gorm:"size:20;default:FREE;not null" json:"tier"`

	CustomPromptsLimit int    `gorm:"default:3" json:"custom_prompts_limit"`
	ForumAccessLevel   string `gorm:"size:20;default:basic" json:"forum_access_level"`
	SupportPriority    string `gorm:"size:20;default:community" json:"support_priority"`
	AnalyticsAccess    bool   `gorm:"default:false" json:"analytics_access"`
	APIAccess          bool   `gorm:"default:false" json:"api_access"`
	CustomBranding     bool   `gorm:"default:false" json:"custom_branding"`

	// Billing-cycle bookkeeping mirrored from the payment processor.
	CurrentPeriodStart *time.Time `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `gorm:"default:false" json:"cancel_at_period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Membership) TableName() string { return "memberships" }
