package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	webhooksapp "github.com/greenmission/backend/internal/application/webhooks"
)

// AirtableWebhookHandler handles record-change notifications from Airtable.
// These endpoints are called by Airtable automations and do not require
// authentication.
type AirtableWebhookHandler struct {
	BaseHandler
	webhookService *webhooksapp.AirtableWebhookService
}

// NewAirtableWebhookHandler creates a new AirtableWebhookHandler
func NewAirtableWebhookHandler(webhookService *webhooksapp.AirtableWebhookService) *AirtableWebhookHandler {
	return &AirtableWebhookHandler{
		webhookService: webhookService,
	}
}

// HandleAirtableWebhook receives directory record change notifications.
// POST /api/v1/webhooks/airtable
func (h *AirtableWebhookHandler) HandleAirtableWebhook(c *gin.Context) {
	payload, ok := readWebhookPayload(c)
	if !ok {
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, c.GetHeader("X-Airtable-Content-MAC"))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Webhook verification failed"})
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}
