package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/greenmission/backend/internal/infrastructure/billing"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// SubscriptionFetcher reads authoritative subscription state from Stripe.
// *billing.StripeAdapter satisfies it.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*billing.SubscriptionOutput, error)
}

// StripeWebhookService handles Stripe webhook events: verify the signature,
// drop replays, purge the cache entries the event makes stale, and re-prime
// the billing entry from the API. Events are acknowledged once the
// signature passes so Stripe does not retry deliveries we have already
// seen.
type StripeWebhookService struct {
	config        *billing.StripeConfig
	subscriptions SubscriptionFetcher
	idempotency   cache.IdempotencyStore
	invalidator   *cache.Invalidator
	cache         cache.Cache
	logger        *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(
	config *billing.StripeConfig,
	subscriptions SubscriptionFetcher,
	idempotency cache.IdempotencyStore,
	invalidator *cache.Invalidator,
	c cache.Cache,
	logger *zap.Logger,
) *StripeWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeWebhookService{
		config:        config,
		subscriptions: subscriptions,
		idempotency:   idempotency,
		invalidator:   invalidator,
		cache:         c,
		logger:        logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and processes one Stripe webhook delivery.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		s.logger.Error("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	return s.handleEvent(ctx, event), nil
}

// handleEvent dedupes and dispatches one verified event.
func (s *StripeWebhookService) handleEvent(ctx context.Context, event stripe.Event) *WebhookResult {
	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	fresh, err := s.idempotency.MarkProcessed(ctx, event.ID, cache.TTLVeryLong)
	if err != nil {
		// Losing the dedupe store means at-least-once processing; the
		// invalidations below are themselves idempotent.
		s.logger.Warn("Idempotency check unavailable",
			zap.String("event_id", event.ID),
			zap.Error(err))
	} else if !fresh {
		s.logger.Info("Skipping already-processed webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		result.Message = "Duplicate delivery"
		return result
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	refs, known := s.extractRefs(event)
	if !known {
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
		return result
	}

	s.invalidator.Invalidate(ctx, string(event.Type), refs)
	if refs.SubscriptionID != "" && refs.CustomerID != "" {
		s.refreshSubscription(ctx, refs)
	}
	return result
}

// refreshSubscription re-primes the customer's billing cache entry after the
// stale one is purged, so the next dashboard read skips the Stripe round
// trip. The event snapshot is not trusted: deliveries arrive out of order,
// the API is authoritative. A member organization holds one subscription,
// which is why a single fetch stands in for the customer's list.
// Best-effort: on any failure the entry stays cold and the next read
// fetches through.
func (s *StripeWebhookService) refreshSubscription(ctx context.Context, refs cache.EventRefs) {
	sub, err := s.subscriptions.GetSubscription(ctx, refs.SubscriptionID)
	if err != nil {
		s.logger.Warn("Failed to refresh subscription after webhook",
			zap.String("subscription_id", refs.SubscriptionID),
			zap.Error(err))
		return
	}

	data, err := json.Marshal([]*billing.SubscriptionOutput{sub})
	if err != nil {
		return
	}
	key := cache.Key(cache.ServiceStripe, "customer", refs.CustomerID)
	if err := s.cache.Set(ctx, key, data, cache.TTLShort); err != nil {
		s.logger.Warn("Failed to warm subscription cache",
			zap.String("key", key),
			zap.Error(err))
	}
}

// extractRefs pulls the object identifiers the invalidation map keys on.
// The second return is false for event types this service does not act on.
func (s *StripeWebhookService) extractRefs(event stripe.Event) (cache.EventRefs, bool) {
	var refs cache.EventRefs

	switch event.Type {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			s.logger.Warn("Failed to decode subscription from webhook",
				zap.String("event_id", event.ID),
				zap.Error(err))
			return refs, false
		}
		refs.SubscriptionID = sub.ID
		if sub.Customer != nil {
			refs.CustomerID = sub.Customer.ID
		}
		return refs, true

	case "invoice.paid", "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			s.logger.Warn("Failed to decode invoice from webhook",
				zap.String("event_id", event.ID),
				zap.Error(err))
			return refs, false
		}
		if invoice.Customer != nil {
			refs.CustomerID = invoice.Customer.ID
		}
		return refs, true

	case "price.created", "price.updated", "price.deleted":
		return refs, true

	default:
		return refs, false
	}
}
