package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/pkg/logger"
	"gorm.io/gorm"
)

// Billing webhook event types pushed by the payment processor.
const (
	EventSubscriptionCreated  = "subscription.created"
	EventSubscriptionUpdated  = "subscription.updated"
	EventSubscriptionCanceled = "subscription.canceled"
	EventInvoicePaid          = "invoice.paid"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// BillingEvent is the decoded webhook payload.
type BillingEvent struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Data BillingEventData `json:"data"`
}

// BillingEventData carries the subscription snapshot attached to an event.
// Period timestamps are Unix seconds, matching the processor's format.
type BillingEventData struct {
	UserID             uint   `json:"user_id"`
	Tier               string `json:"tier"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
}

// VerifyBillingSignature checks the HMAC-SHA256 signature over the raw
// webhook body. Header format: "sha256=<hex>". Constant-time compare.
func VerifyBillingSignature(secret string, body []byte, signature string) bool {
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(strings.TrimPrefix(signature, "sha256=")), []byte(expectedMAC))
}

// BillingService applies payment-processor events to memberships.
// Unrecognized event types are recorded and acknowledged, never errored:
// failing them would only provoke redelivery storms. Whether silently
// ignoring unknown types is the right product behavior is an open
// question; the permissive policy is deliberate for now.
type BillingService struct {
	db            *gorm.DB
	membershipSvc *MembershipService
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{
		db:            db,
		membershipSvc: NewMembershipService(db),
	}
}

// ParseBillingEvent decodes a webhook body.
func ParseBillingEvent(body []byte) (*BillingEvent, error) {
	var event BillingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	if event.ID == "" {
		return nil, errors.New("billing event missing id")
	}
	return &event, nil
}

// ProcessTask is the queue-facing entry point.
func (s *BillingService) ProcessTask(ctx context.Context, task *BillingTask) error {
	if task == nil || task.Event == nil {
		return errors.New("empty billing task")
	}
	return s.ProcessEvent(ctx, task.Event)
}

// ProcessEvent handles one billing event. Duplicate deliveries (same event
// ID) are skipped. Missing metadata on a recognized event is logged and
// swallowed so the delivery still succeeds.
func (s *BillingService) ProcessEvent(ctx context.Context, event *BillingEvent) error {
	record, fresh, err := s.recordEvent(event)
	if err != nil {
		return err
	}
	if !fresh {
		logger.Infof("[Billing] duplicate event %s, skipping", event.ID)
		return nil
	}

	status := models.WebhookEventProcessed
	var procErr error

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		procErr = s.applySubscription(event)
	case EventSubscriptionCanceled:
		procErr = s.cancelSubscription(event)
	case EventInvoicePaid:
		procErr = s.applyInvoicePaid(event)
	case EventInvoicePaymentFailed:
		s.logPaymentFailure(event)
	default:
		status = models.WebhookEventIgnored
		AuditInfo("billing", "EventIgnored", "unrecognized billing event type: "+event.Type, nil, "", map[string]interface{}{
			"event_id": event.ID,
		})
	}

	if procErr != nil {
		// Log-and-continue: the delivery is acknowledged so the processor
		// does not retry an event we cannot use.
		status = models.WebhookEventFailed
		AuditError("billing", "EventFailed", procErr.Error(), nil, "", map[string]interface{}{
			"event_id": event.ID,
			"type":     event.Type,
		})
	}

	s.db.Model(&models.WebhookEvent{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"status": status,
			"error":  errString(procErr),
		})
	return nil
}

// recordEvent stores the delivery for idempotency. fresh is false when the
// event ID was already seen.
func (s *BillingService) recordEvent(event *BillingEvent) (*models.WebhookEvent, bool, error) {
	var existing models.WebhookEvent
	err := s.db.Where("event_id = ?", event.ID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	payload, _ := json.Marshal(event)
	record := &models.WebhookEvent{
		EventID: event.ID,
		Type:    event.Type,
		Payload: string(payload),
		Status:  models.WebhookEventProcessed,
	}
	if err := s.db.Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			// Concurrent delivery of the same event; treat as duplicate.
			return record, false, nil
		}
		return nil, false, err
	}
	return record, true, nil
}

func (s *BillingService) applySubscription(event *BillingEvent) error {
	if event.Data.UserID == 0 {
		return errors.New("subscription event missing user_id")
	}
	if event.Data.Tier == "" {
		return errors.New("subscription event missing tier")
	}

	start, end := unixTimePtr(event.Data.CurrentPeriodStart), unixTimePtr(event.Data.CurrentPeriodEnd)
	if err := s.membershipSvc.ApplyTier(event.Data.UserID, event.Data.Tier, start, end, event.Data.CancelAtPeriodEnd); err != nil {
		return err
	}

	uid := event.Data.UserID
	AuditInfo("billing", "SubscriptionApplied", "tier set to "+event.Data.Tier, &uid, "", map[string]interface{}{
		"event_id": event.ID,
		"type":     event.Type,
	})
	return nil
}

func (s *BillingService) cancelSubscription(event *BillingEvent) error {
	if event.Data.UserID == 0 {
		return errors.New("cancellation event missing user_id")
	}

	if err := s.membershipSvc.Downgrade(event.Data.UserID); err != nil {
		return err
	}

	uid := event.Data.UserID
	AuditInfo("billing", "SubscriptionCanceled", "membership downgraded to FREE", &uid, "", map[string]interface{}{
		"event_id": event.ID,
	})
	return nil
}

func (s *BillingService) applyInvoicePaid(event *BillingEvent) error {
	if event.Data.UserID == 0 {
		return errors.New("invoice event missing user_id")
	}
	return s.membershipSvc.UpdatePeriod(event.Data.UserID,
		unixTimePtr(event.Data.CurrentPeriodStart),
		unixTimePtr(event.Data.CurrentPeriodEnd))
}

func (s *BillingService) logPaymentFailure(event *BillingEvent) {
	var uid *uint
	if event.Data.UserID != 0 {
		v := event.Data.UserID
		uid = &v
	}
	AuditWarning("billing", "PaymentFailed", "invoice payment failed", uid, "", map[string]interface{}{
		"event_id": event.ID,
	})
}

func unixTimePtr(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > 1000 {
		msg = msg[:1000]
	}
	return msg
}
