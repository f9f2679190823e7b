package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/infrastructure/billing"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

var testClock = shared.FixedClock{T: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}

type fakeSubscriptionFetcher struct {
	sub   *billing.SubscriptionOutput
	err   error
	calls int
}

func (f *fakeSubscriptionFetcher) GetSubscription(ctx context.Context, subscriptionID string) (*billing.SubscriptionOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.sub, nil
}

func newWebhookService(t *testing.T) (*StripeWebhookService, cache.Cache, *fakeSubscriptionFetcher) {
	t.Helper()
	c := cache.NewMemoryCache(testClock)
	t.Cleanup(func() { _ = c.Close() })

	fetcher := &fakeSubscriptionFetcher{err: errors.New("stripe unreachable")}
	svc := NewStripeWebhookService(
		&billing.StripeConfig{
			SecretKey:       "sk_test_123",
			WebhookSecret:   "whsec_456",
			DefaultCurrency: "usd",
		},
		fetcher,
		cache.NewInMemoryIdempotencyStore(testClock),
		cache.NewInvalidator(c, nil),
		c,
		nil,
	)
	return svc, c, fetcher
}

func subscriptionEvent(t *testing.T, eventID string, eventType stripe.EventType) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":       "sub_123",
		"customer": "cus_456",
		"status":   "active",
	})
	require.NoError(t, err)
	return stripe.Event{
		ID:   eventID,
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestProcessWebhook_InvalidSignature(t *testing.T) {
	svc, _, _ := newWebhookService(t)

	_, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "bad-signature")
	assert.Error(t, err)
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, c cache.Cache, keys ...string) {
		t.Helper()
		for _, key := range keys {
			require.NoError(t, c.Set(ctx, key, []byte(`{}`), time.Hour))
		}
	}
	gone := func(t *testing.T, c cache.Cache, key string) {
		t.Helper()
		_, found, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found, "expected %s to be purged", key)
	}

	t.Run("subscription event purges billing keys", func(t *testing.T) {
		svc, c, _ := newWebhookService(t)
		seed(t, c,
			"stripe:subscription:sub_123",
			"stripe:customer:cus_456",
			"stripe:subscriptions:cus_456")

		result := svc.handleEvent(ctx, subscriptionEvent(t, "evt_1", "customer.subscription.updated"))

		assert.True(t, result.Processed)
		gone(t, c, "stripe:subscription:sub_123")
		gone(t, c, "stripe:customer:cus_456")
		gone(t, c, "stripe:subscriptions:cus_456")
	})

	t.Run("subscription event re-primes the billing entry", func(t *testing.T) {
		svc, c, fetcher := newWebhookService(t)
		fetcher.err = nil
		fetcher.sub = &billing.SubscriptionOutput{
			SubscriptionID: "sub_123",
			CustomerID:     "cus_456",
			Status:         billing.SubscriptionStatusActive,
		}
		seed(t, c, "stripe:customer:cus_456")

		result := svc.handleEvent(ctx, subscriptionEvent(t, "evt_6", "customer.subscription.updated"))

		require.True(t, result.Processed)
		assert.Equal(t, 1, fetcher.calls)

		data, found, err := c.Get(ctx, "stripe:customer:cus_456")
		require.NoError(t, err)
		require.True(t, found, "billing entry should be warm after the purge")

		var subs []*billing.SubscriptionOutput
		require.NoError(t, json.Unmarshal(data, &subs))
		require.Len(t, subs, 1)
		assert.Equal(t, "sub_123", subs[0].SubscriptionID)
		assert.Equal(t, billing.SubscriptionStatusActive, subs[0].Status)
	})

	t.Run("invoice event purges the customer", func(t *testing.T) {
		svc, c, _ := newWebhookService(t)
		seed(t, c, "stripe:customer:cus_456")

		raw, err := json.Marshal(map[string]any{"id": "in_1", "customer": "cus_456"})
		require.NoError(t, err)
		result := svc.handleEvent(ctx, stripe.Event{
			ID:   "evt_2",
			Type: "invoice.paid",
			Data: &stripe.EventData{Raw: raw},
		})

		assert.True(t, result.Processed)
		gone(t, c, "stripe:customer:cus_456")
	})

	t.Run("price event purges the plan catalog", func(t *testing.T) {
		svc, c, _ := newWebhookService(t)
		seed(t, c, "stripe:prices")

		result := svc.handleEvent(ctx, stripe.Event{
			ID:   "evt_3",
			Type: "price.updated",
			Data: &stripe.EventData{Raw: []byte(`{"id":"price_1"}`)},
		})

		assert.True(t, result.Processed)
		gone(t, c, "stripe:prices")
	})

	t.Run("duplicate delivery is acked but skipped", func(t *testing.T) {
		svc, c, _ := newWebhookService(t)

		first := svc.handleEvent(ctx, subscriptionEvent(t, "evt_4", "customer.subscription.created"))
		require.True(t, first.Processed)

		seed(t, c, "stripe:customer:cus_456")
		second := svc.handleEvent(ctx, subscriptionEvent(t, "evt_4", "customer.subscription.created"))

		assert.True(t, second.Processed)
		assert.Equal(t, "Duplicate delivery", second.Message)

		_, found, err := c.Get(ctx, "stripe:customer:cus_456")
		require.NoError(t, err)
		assert.True(t, found, "duplicate must not re-run invalidations")
	})

	t.Run("unhandled event type is acked untouched", func(t *testing.T) {
		svc, c, _ := newWebhookService(t)
		seed(t, c, "stripe:customer:cus_456")

		result := svc.handleEvent(ctx, stripe.Event{
			ID:   "evt_5",
			Type: "charge.refunded",
			Data: &stripe.EventData{Raw: []byte(`{}`)},
		})

		assert.True(t, result.Processed)
		assert.Equal(t, "Event type not handled", result.Message)

		_, found, err := c.Get(ctx, "stripe:customer:cus_456")
		require.NoError(t, err)
		assert.True(t, found)
	})
}
