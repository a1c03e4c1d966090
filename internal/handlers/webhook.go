package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prompthive/prompthive/internal/config"
	"github.com/prompthive/prompthive/internal/services"
	"github.com/prompthive/prompthive/pkg/logger"
	"github.com/prompthive/prompthive/pkg/response"
)

// WebhookHandler receives billing events from the payment processor.
// The handler only verifies and enqueues; membership updates happen in
// the task queue processor so the processor gets its 200 quickly.
type WebhookHandler struct {
	secret string
}

func NewWebhookHandler(cfg *config.BillingConfig) *WebhookHandler {
	return &WebhookHandler{secret: cfg.WebhookSecret}
}

// HandleBilling processes one webhook delivery
// POST /api/webhooks/billing
func (h *WebhookHandler) HandleBilling(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}

	signature := c.GetHeader("X-Billing-Signature")
	if h.secret == "" {
		logger.Warnf("[Webhook] billing webhook secret not configured, rejecting delivery")
		response.Unauthorized(c, "webhook not configured")
		return
	}
	if !services.VerifyBillingSignature(h.secret, body, signature) {
		services.AuditWarning("billing", "InvalidSignature", "billing webhook signature mismatch", nil, c.ClientIP(), nil)
		response.Unauthorized(c, "invalid signature")
		return
	}

	event, err := services.ParseBillingEvent(body)
	if err != nil {
		response.BadRequest(c, "malformed billing event")
		return
	}

	queue := services.GetTaskQueue()
	if queue == nil {
		response.Fail(c, response.NewServerError("task queue not initialized"))
		return
	}
	if err := queue.Enqueue(&services.BillingTask{Event: event}); err != nil {
		logger.Errorf("[Webhook] failed to enqueue billing event %s: %v", event.ID, err)
		response.Fail(c, response.NewServerError("failed to queue event"))
		return
	}

	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Data:    gin.H{"received": event.ID},
	})
}
