package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/greenmission/backend/internal/infrastructure/cache"
	"github.com/greenmission/backend/internal/infrastructure/clerk"
	"go.uber.org/zap"
)

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ClerkWebhookService handles Clerk webhook deliveries: verify the Svix
// signature, drop replays, and purge the cached identity data the event
// makes stale.
type ClerkWebhookService struct {
	verifier    *clerk.WebhookVerifier
	idempotency cache.IdempotencyStore
	invalidator *cache.Invalidator
	logger      *zap.Logger
}

// NewClerkWebhookService creates a new ClerkWebhookService
func NewClerkWebhookService(
	verifier *clerk.WebhookVerifier,
	idempotency cache.IdempotencyStore,
	invalidator *cache.Invalidator,
	logger *zap.Logger,
) *ClerkWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClerkWebhookService{
		verifier:    verifier,
		idempotency: idempotency,
		invalidator: invalidator,
		logger:      logger,
	}
}

// clerkEventData carries the identifiers this service keys invalidations on.
// Clerk event payloads differ per object type; unknown fields are ignored.
type clerkEventData struct {
	ID           string `json:"id"`
	Organization struct {
		ID string `json:"id"`
	} `json:"organization"`
	PublicUserData struct {
		UserID string `json:"user_id"`
	} `json:"public_user_data"`
}

// ProcessWebhook verifies and processes one Clerk webhook delivery. The
// delivery ID from the signature headers doubles as the idempotency key.
func (s *ClerkWebhookService) ProcessWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookResult, error) {
	event, err := s.verifier.Verify(payload, headers)
	if err != nil {
		s.logger.Error("Failed to verify Clerk webhook", zap.Error(err))
		return nil, err
	}

	deliveryID := headers.Get("svix-id")
	result := &WebhookResult{
		EventID:   deliveryID,
		EventType: event.Type,
		Processed: true,
	}

	fresh, err := s.idempotency.MarkProcessed(ctx, deliveryID, cache.TTLVeryLong)
	if err != nil {
		s.logger.Warn("Idempotency check unavailable",
			zap.String("event_id", deliveryID),
			zap.Error(err))
	} else if !fresh {
		s.logger.Info("Skipping already-processed Clerk event",
			zap.String("event_id", deliveryID),
			zap.String("event_type", event.Type))
		result.Message = "Duplicate delivery"
		return result, nil
	}

	var data clerkEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		s.logger.Warn("Failed to decode Clerk event data",
			zap.String("event_type", event.Type),
			zap.Error(err))
		result.Message = "Undecodable event data"
		return result, nil
	}

	s.logger.Info("Processing Clerk webhook event",
		zap.String("event_id", deliveryID),
		zap.String("event_type", event.Type))

	s.invalidator.Invalidate(ctx, event.Type, s.extractRefs(event.Type, data))
	return result, nil
}

func (s *ClerkWebhookService) extractRefs(eventType string, data clerkEventData) cache.EventRefs {
	var refs cache.EventRefs
	switch {
	case strings.HasPrefix(eventType, "user."):
		refs.UserID = data.ID
	case strings.HasPrefix(eventType, "organizationMembership."):
		refs.OrgID = data.Organization.ID
		refs.UserID = data.PublicUserData.UserID
	case strings.HasPrefix(eventType, "organization."):
		refs.OrgID = data.ID
	}
	return refs
}
