package billing

import (
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds configuration for Stripe integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`

	// WebhookSecret is the secret for verifying webhook signatures
	WebhookSecret string `json:"webhook_secret" mapstructure:"webhook_secret"`

	// DefaultCurrency is the currency memberships are billed in (e.g., "usd")
	DefaultCurrency string `json:"default_currency" mapstructure:"default_currency"`

	// PriceIDs maps membership tiers to Stripe Price IDs
	PriceIDs map[string]string `json:"price_ids" mapstructure:"price_ids"`
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must be a secret or restricted key")
	}
	if c.DefaultCurrency == "" {
		return fmt.Errorf("stripe: default currency is required")
	}
	return nil
}

// IsTestMode reports whether the configured key is a test-mode key.
func (c *StripeConfig) IsTestMode() bool {
	return strings.Contains(c.SecretKey, "_test_")
}

// GetPriceID returns the Stripe Price ID for a membership tier
func (c *StripeConfig) GetPriceID(tier string) (string, error) {
	priceID, exists := c.PriceIDs[tier]
	if !exists || priceID == "" {
		return "", fmt.Errorf("stripe: no price ID configured for tier: %s", tier)
	}
	return priceID, nil
}

// InitStripeClient initializes the Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
