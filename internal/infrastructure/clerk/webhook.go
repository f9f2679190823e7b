package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/greenmission/backend/internal/domain/shared"
)

const (
	headerWebhookID        = "svix-id"
	headerWebhookTimestamp = "svix-timestamp"
	headerWebhookSignature = "svix-signature"

	secretPrefix = "whsec_"

	// timestampTolerance bounds the clock skew accepted on webhook
	// deliveries; replayed payloads outside the window are rejected.
	timestampTolerance = 5 * time.Minute
)

// WebhookEvent is the envelope Clerk delivers on every webhook.
type WebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WebhookVerifier authenticates webhook deliveries signed in the Svix format:
// an HMAC-SHA256 over "<id>.<timestamp>.<payload>" keyed by the endpoint
// secret.
type WebhookVerifier struct {
	key   []byte
	clock shared.Clock
}

// NewWebhookVerifier creates a verifier from an endpoint secret
// ("whsec_<base64 key>").
func NewWebhookVerifier(secret string, clock shared.Clock) (*WebhookVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("clerk: webhook secret is required")
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return nil, fmt.Errorf("clerk: invalid webhook secret: %w", err)
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &WebhookVerifier{key: key, clock: clock}, nil
}

// Verify checks a delivery's signature headers against the payload and
// returns the decoded event. The delivery is rejected when any header is
// missing, the timestamp falls outside the tolerance window, or none of the
// presented signatures match.
func (v *WebhookVerifier) Verify(payload []byte, headers http.Header) (*WebhookEvent, error) {
	msgID := headers.Get(headerWebhookID)
	msgTimestamp := headers.Get(headerWebhookTimestamp)
	msgSignature := headers.Get(headerWebhookSignature)
	if msgID == "" || msgTimestamp == "" || msgSignature == "" {
		return nil, shared.NewDomainError("WEBHOOK_HEADERS_MISSING", "Missing webhook signature headers")
	}

	ts, err := strconv.ParseInt(msgTimestamp, 10, 64)
	if err != nil {
		return nil, shared.NewDomainError("WEBHOOK_TIMESTAMP_INVALID", "Webhook timestamp is not a unix timestamp")
	}
	now := v.clock.Now()
	sent := time.Unix(ts, 0)
	if sent.Before(now.Add(-timestampTolerance)) || sent.After(now.Add(timestampTolerance)) {
		return nil, shared.NewDomainError("WEBHOOK_TIMESTAMP_EXPIRED", "Webhook timestamp outside tolerance window")
	}

	expected := v.sign(msgID, msgTimestamp, payload)

	// The signature header carries space-separated "v1,<base64>" entries,
	// one per active endpoint key.
	for _, entry := range strings.Split(msgSignature, " ") {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		presented, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(presented, expected) {
			var event WebhookEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				return nil, fmt.Errorf("clerk: failed to decode webhook payload: %w", err)
			}
			return &event, nil
		}
	}

	return nil, shared.NewDomainError("WEBHOOK_SIGNATURE_INVALID", "Webhook signature verification failed")
}

func (v *WebhookVerifier) sign(msgID, timestamp string, payload []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
