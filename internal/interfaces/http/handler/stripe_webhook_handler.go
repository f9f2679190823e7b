package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	billingapp "github.com/greenmission/backend/internal/application/billing"
)

// Maximum webhook payload size (64KB - webhook deliveries are small)
const maxWebhookPayloadSize = 65536

// WebhookResponse is the acknowledgement body returned to webhook senders
type WebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Message   string `json:"message,omitempty"`
}

// readWebhookPayload reads a size-capped raw body. Signature schemes need
// the exact bytes, so the payload is never bound through a DTO.
func readWebhookPayload(c *gin.Context) ([]byte, bool) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Failed to read request body"})
		return nil, false
	}
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{Message: "Payload too large"})
		return nil, false
	}
	return payload, true
}

// StripeWebhookHandler handles Stripe webhook deliveries.
// These endpoints are called by Stripe and do not require authentication.
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *billingapp.StripeWebhookService
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhookService *billingapp.StripeWebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookService: webhookService,
	}
}

// HandleStripeWebhook receives subscription lifecycle events from Stripe.
// POST /api/v1/webhooks/stripe
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, ok := readWebhookPayload(c)
	if !ok {
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Missing Stripe-Signature header"})
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		// Only signature failures are rejected. Anything after a verified
		// signature is acknowledged so Stripe does not retry forever.
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Webhook signature verification failed"})
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}
