package models

import "time"

// UsageCounter is the database-backed daily usage record, one row per
// (user, action, UTC day). Used when Redis is disabled. The unique index
// lets concurrent first-use inserts collide safely.
type UsageCounter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_usage_user_action_day;not null" json:"user_id"`
	ActionKey string    `gorm:"uniqueIndex:idx_usage_user_action_day;size:50;not null" json:"action_key"`
	Day       string    `gorm:"uniqueIndex:idx_usage_user_action_day;size:10;not null" json:"day"` // "2006-01-02" in UTC
	Count     int       `gorm:"default:0;not null" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UsageCounter) TableName() string { return "usage_counters" }
