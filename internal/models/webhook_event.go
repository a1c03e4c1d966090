package models

import "time"

// Webhook event processing outcomes.
const (
	WebhookEventProcessed = "processed"
	WebhookEventIgnored   = "ignored"
	WebhookEventFailed    = "failed"
)

// WebhookEvent records every delivery from the payment processor, keyed by
// the processor's event ID for idempotent redelivery handling.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"uniqueIndex;size:100;not null" json:"event_id"`
	Type      string    `gorm:"size:100;index" json:"type"`
	Payload   string    `gorm:"type:text" json:"payload"`
	Status    string    `gorm:"size:20;index" json:"status"`
	Error     string    `gorm:"size:1000" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
