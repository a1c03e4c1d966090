package services

import "github.com/prompthive/prompthive/internal/models"

// Gated action keys for daily usage quotas.
const (
	ActionEnhance  = "enhance"
	ActionGenerate = "generate"
	ActionImprove  = "improve"
)

// TierConfig is the full entitlement set for one membership tier.
// Entitlements are a pure function of the tier identifier; the Membership
// row only mirrors these values.
type TierConfig struct {
	Tier               string         `json:"tier"`
	CustomPromptsLimit int            `json:"custom_prompts_limit"`
	ForumAccessLevel   string         `json:"forum_access_level"` // basic, full, priority
	SupportPriority    string         `json:"support_priority"`   // community, standard, priority, dedicated
	AnalyticsAccess    bool           `json:"analytics_access"`
	APIAccess          bool           `json:"api_access"`
	CustomBranding     bool           `json:"custom_branding"`
	PriceCents         int            `json:"price_cents"` // monthly, USD cents
	Features           []string       `json:"features"`
	ActionLimits       map[string]int `json:"action_limits"` // per-day ceiling per gated action
}

// tierConfigs is the static, total policy table. Every tier identifier in
// models must have an entry here.
var tierConfigs = map[string]TierConfig{
	models.TierFree: {
		Tier:               models.TierFree,
		CustomPromptsLimit: 3,
		ForumAccessLevel:   "basic",
		SupportPriority:    "community",
		AnalyticsAccess:    false,
		APIAccess:          false,
		CustomBranding:     false,
		PriceCents:         0,
		Features: []string{
			"Browse all public prompts",
			"Submit up to 3 prompts",
			"5 AI enhancements per day",
		},
		ActionLimits: map[string]int{
			ActionEnhance:  5,
			ActionGenerate: 5,
			ActionImprove:  3,
		},
	},
	models.TierPro: {
		Tier:               models.TierPro,
		CustomPromptsLimit: 25,
		ForumAccessLevel:   "full",
		SupportPriority:    "standard",
		AnalyticsAccess:    true,
		APIAccess:          false,
		CustomBranding:     false,
		PriceCents:         900,
		Features: []string{
			"Everything in FREE",
			"Submit up to 25 prompts",
			"50 AI enhancements per day",
			"Prompt analytics",
		},
		ActionLimits: map[string]int{
			ActionEnhance:  50,
			ActionGenerate: 50,
			ActionImprove:  25,
		},
	},
	models.TierPremium: {
		Tier:               models.TierPremium,
		CustomPromptsLimit: 100,
		ForumAccessLevel:   "full",
		SupportPriority:    "priority",
		AnalyticsAccess:    true,
		APIAccess:          true,
		CustomBranding:     false,
		PriceCents:         2900,
		Features: []string{
			"Everything in PRO",
			"Submit up to 100 prompts",
			"200 AI enhancements per day",
			"API access",
		},
		ActionLimits: map[string]int{
			ActionEnhance:  200,
			ActionGenerate: 200,
			ActionImprove:  100,
		},
	},
	models.TierEnterprise: {
		Tier:               models.TierEnterprise,
		CustomPromptsLimit: 1000,
		ForumAccessLevel:   "priority",
		SupportPriority:    "dedicated",
		AnalyticsAccess:    true,
		APIAccess:          true,
		CustomBranding:     true,
		PriceCents:         9900,
		Features: []string{
			"Everything in PREMIUM",
			"Submit up to 1000 prompts",
			"Unmetered AI enhancements",
			"Custom branding",
			"Dedicated support",
		},
		ActionLimits: map[string]int{
			ActionEnhance:  2000,
			ActionGenerate: 2000,
			ActionImprove:  1000,
		},
	},
}

// GetTier looks up the entitlement config for a tier identifier.
func GetTier(tier string) (TierConfig, bool) {
	cfg, ok := tierConfigs[tier]
	return cfg, ok
}

// AllTiers returns the policy table in ascending price order, for the
// public pricing endpoint.
func AllTiers() []TierConfig {
	return []TierConfig{
		tierConfigs[models.TierFree],
		tierConfigs[models.TierPro],
		tierConfigs[models.TierPremium],
		tierConfigs[models.TierEnterprise],
	}
}

// ActionLimit returns the per-day ceiling for a gated action under the
// given tier. Unknown tiers fall back to the FREE limits.
func ActionLimit(tier, actionKey string) int {
	cfg, ok := tierConfigs[tier]
	if !ok {
		cfg = tierConfigs[models.TierFree]
	}
	return cfg.ActionLimits[actionKey]
}
