package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// airtableMACHeader carries the payload HMAC on Airtable deliveries.
const airtableMACHeader = "X-Airtable-Content-MAC"

// AirtableEvent is the notification our Airtable automations post when a
// member record changes outside the API (manual edits in the base).
type AirtableEvent struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	RecordID  string `json:"record_id,omitempty"`
	Slug      string `json:"slug,omitempty"`
}

// AirtableWebhookService handles record-change notifications from Airtable:
// verify the content MAC, drop replays, and purge the directory caches for
// the touched record.
type AirtableWebhookService struct {
	secret      []byte
	idempotency cache.IdempotencyStore
	invalidator *cache.Invalidator
	logger      *zap.Logger
}

// NewAirtableWebhookService creates a new AirtableWebhookService
func NewAirtableWebhookService(
	secret string,
	idempotency cache.IdempotencyStore,
	invalidator *cache.Invalidator,
	logger *zap.Logger,
) *AirtableWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AirtableWebhookService{
		secret:      []byte(secret),
		idempotency: idempotency,
		invalidator: invalidator,
		logger:      logger,
	}
}

// ProcessWebhook verifies and processes one Airtable notification. The MAC
// header is "hmac-sha256=<hex>" over the raw payload.
func (s *AirtableWebhookService) ProcessWebhook(ctx context.Context, payload []byte, macHeader string) (*WebhookResult, error) {
	if err := s.verify(payload, macHeader); err != nil {
		s.logger.Error("Failed to verify Airtable webhook", zap.Error(err))
		return nil, err
	}

	var event AirtableEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, shared.NewDomainError("WEBHOOK_PAYLOAD_INVALID", "Airtable webhook payload is not valid JSON")
	}

	result := &WebhookResult{
		EventID:   event.EventID,
		EventType: event.EventType,
		Processed: true,
	}

	if event.EventID != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.EventID, cache.TTLVeryLong)
		if err != nil {
			s.logger.Warn("Idempotency check unavailable",
				zap.String("event_id", event.EventID),
				zap.Error(err))
		} else if !fresh {
			result.Message = "Duplicate delivery"
			return result, nil
		}
	}

	s.logger.Info("Processing Airtable webhook event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("record_id", event.RecordID))

	s.invalidator.Invalidate(ctx, event.EventType, cache.EventRefs{
		RecordID: event.RecordID,
		Slug:     event.Slug,
	})
	return result, nil
}

func (s *AirtableWebhookService) verify(payload []byte, macHeader string) error {
	if len(s.secret) == 0 {
		return shared.NewDomainError("WEBHOOK_SECRET_MISSING", "Airtable webhook secret is not configured")
	}

	encoded, ok := strings.CutPrefix(macHeader, "hmac-sha256=")
	if !ok {
		return shared.NewDomainError("WEBHOOK_HEADERS_MISSING", "Missing Airtable content MAC header")
	}
	presented, err := hex.DecodeString(encoded)
	if err != nil {
		return shared.NewDomainError("WEBHOOK_SIGNATURE_INVALID", "Airtable content MAC is not hex")
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	if !hmac.Equal(presented, mac.Sum(nil)) {
		return shared.NewDomainError("WEBHOOK_SIGNATURE_INVALID", "Airtable content MAC verification failed")
	}
	return nil
}
