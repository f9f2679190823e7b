package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	webhooksapp "github.com/greenmission/backend/internal/application/webhooks"
)

// ClerkWebhookHandler handles Clerk (Svix) webhook deliveries.
// These endpoints are called by Clerk and do not require authentication.
type ClerkWebhookHandler struct {
	BaseHandler
	webhookService *webhooksapp.ClerkWebhookService
}

// NewClerkWebhookHandler creates a new ClerkWebhookHandler
func NewClerkWebhookHandler(webhookService *webhooksapp.ClerkWebhookService) *ClerkWebhookHandler {
	return &ClerkWebhookHandler{
		webhookService: webhookService,
	}
}

// HandleClerkWebhook receives identity events from Clerk.
// POST /api/v1/webhooks/clerk
func (h *ClerkWebhookHandler) HandleClerkWebhook(c *gin.Context) {
	payload, ok := readWebhookPayload(c)
	if !ok {
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, c.Request.Header)
	if err != nil {
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
