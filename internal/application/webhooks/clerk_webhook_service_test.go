package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"github.com/greenmission/backend/internal/infrastructure/clerk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = shared.FixedClock{T: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}

const clerkSecret = "whsec_dGVzdC1zaWduaW5nLWtleQ=="

func newClerkService(t *testing.T) (*ClerkWebhookService, cache.Cache) {
	t.Helper()
	c := cache.NewMemoryCache(testClock)
	t.Cleanup(func() { _ = c.Close() })

	verifier, err := clerk.NewWebhookVerifier(clerkSecret, testClock)
	require.NoError(t, err)

	svc := NewClerkWebhookService(
		verifier,
		cache.NewInMemoryIdempotencyStore(testClock),
		cache.NewInvalidator(c, nil),
		nil,
	)
	return svc, c
}

func clerkHeaders(t *testing.T, deliveryID string, payload []byte) http.Header {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(clerkSecret[len("whsec_"):])
	require.NoError(t, err)

	ts := strconv.FormatInt(testClock.Now().Unix(), 10)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(deliveryID + "." + ts + "."))
	mac.Write(payload)

	h := http.Header{}
	h.Set("svix-id", deliveryID)
	h.Set("svix-timestamp", ts)
	h.Set("svix-signature", "v1,"+base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	return h
}

func seedKeys(t *testing.T, c cache.Cache, keys ...string) {
	t.Helper()
	for _, key := range keys {
		require.NoError(t, c.Set(context.Background(), key, []byte(`{}`), time.Hour))
	}
}

func assertPurged(t *testing.T, c cache.Cache, key string) {
	t.Helper()
	_, found, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, found, "expected %s to be purged", key)
}

func assertKept(t *testing.T, c cache.Cache, key string) {
	t.Helper()
	_, found, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, found, "expected %s to be kept", key)
}

func TestClerkProcessWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("user event purges that user's keys", func(t *testing.T) {
		svc, c := newClerkService(t)
		seedKeys(t, c,
			"clerk:user:user_abc",
			"clerk:users:page-1",
			"clerk:user:user_other")

		payload := []byte(`{"type":"user.updated","data":{"id":"user_abc"}}`)
		result, err := svc.ProcessWebhook(ctx, payload, clerkHeaders(t, "msg_1", payload))

		require.NoError(t, err)
		assert.True(t, result.Processed)
		assert.Equal(t, "user.updated", result.EventType)
		assertPurged(t, c, "clerk:user:user_abc")
		assertPurged(t, c, "clerk:users:page-1")
		assertKept(t, c, "clerk:user:user_other")
	})

	t.Run("membership event purges the org and the member's memberships", func(t *testing.T) {
		svc, c := newClerkService(t)
		seedKeys(t, c,
			"clerk:org:org_xyz",
			"clerk:memberships:user_abc")

		payload := []byte(`{
			"type": "organizationMembership.created",
			"data": {
				"id": "orgmem_1",
				"organization": {"id": "org_xyz"},
				"public_user_data": {"user_id": "user_abc"}
			}
		}`)
		_, err := svc.ProcessWebhook(ctx, payload, clerkHeaders(t, "msg_2", payload))

		require.NoError(t, err)
		assertPurged(t, c, "clerk:org:org_xyz")
		assertPurged(t, c, "clerk:memberships:user_abc")
	})

	t.Run("rejects a bad signature", func(t *testing.T) {
		svc, _ := newClerkService(t)

		payload := []byte(`{"type":"user.updated","data":{"id":"user_abc"}}`)
		headers := clerkHeaders(t, "msg_3", []byte(`other payload`))

		_, err := svc.ProcessWebhook(ctx, payload, headers)
		assert.Error(t, err)
	})

	t.Run("duplicate delivery is acked but skipped", func(t *testing.T) {
		svc, c := newClerkService(t)

		payload := []byte(`{"type":"user.updated","data":{"id":"user_abc"}}`)
		_, err := svc.ProcessWebhook(ctx, payload, clerkHeaders(t, "msg_4", payload))
		require.NoError(t, err)

		seedKeys(t, c, "clerk:user:user_abc")
		result, err := svc.ProcessWebhook(ctx, payload, clerkHeaders(t, "msg_4", payload))

		require.NoError(t, err)
		assert.Equal(t, "Duplicate delivery", result.Message)
		assertKept(t, c, "clerk:user:user_abc")
	})
}
