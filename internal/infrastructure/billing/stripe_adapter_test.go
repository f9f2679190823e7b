package billing

import (
	"testing"

	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

func testStripeConfig() *StripeConfig {
	return &StripeConfig{
		SecretKey:       "sk_test_123",
		WebhookSecret:   "whsec_456",
		DefaultCurrency: "usd",
		PriceIDs: map[string]string{
			"basic":      "price_basic",
			"premium":    "price_premium",
			"enterprise": "price_enterprise",
		},
	}
}

func TestStripeConfigValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, testStripeConfig().Validate())
	})

	t.Run("requires a secret key", func(t *testing.T) {
		config := testStripeConfig()
		config.SecretKey = ""
		assert.Error(t, config.Validate())
	})

	t.Run("rejects a publishable key", func(t *testing.T) {
		config := testStripeConfig()
		config.SecretKey = "pk_test_123"
		assert.Error(t, config.Validate())
	})

	t.Run("requires a currency", func(t *testing.T) {
		config := testStripeConfig()
		config.DefaultCurrency = ""
		assert.Error(t, config.Validate())
	})

	t.Run("detects test mode from the key", func(t *testing.T) {
		assert.True(t, testStripeConfig().IsTestMode())

		live := testStripeConfig()
		live.SecretKey = "sk_live_123"
		assert.False(t, live.IsTestMode())
	})
}

func TestGetPriceID(t *testing.T) {
	config := testStripeConfig()

	t.Run("returns the configured price", func(t *testing.T) {
		priceID, err := config.GetPriceID("premium")
		require.NoError(t, err)
		assert.Equal(t, "price_premium", priceID)
	})

	t.Run("errors on an unknown tier", func(t *testing.T) {
		_, err := config.GetPriceID("platinum")
		assert.Error(t, err)
	})

	t.Run("errors on an empty price mapping", func(t *testing.T) {
		config := testStripeConfig()
		config.PriceIDs["basic"] = ""
		_, err := config.GetPriceID("basic")
		assert.Error(t, err)
	})
}

func TestMapStripeSubscriptionStatus(t *testing.T) {
	cases := map[stripe.SubscriptionStatus]SubscriptionStatus{
		stripe.SubscriptionStatusActive:   SubscriptionStatusActive,
		stripe.SubscriptionStatusPastDue:  SubscriptionStatusPastDue,
		stripe.SubscriptionStatusCanceled: SubscriptionStatusCanceled,
		stripe.SubscriptionStatusTrialing: SubscriptionStatusTrialing,
		stripe.SubscriptionStatusPaused:   SubscriptionStatusPaused,
	}
	for in, want := range cases {
		assert.Equal(t, want, mapStripeSubscriptionStatus(in))
	}

	t.Run("active states", func(t *testing.T) {
		assert.True(t, SubscriptionStatusActive.IsActive())
		assert.True(t, SubscriptionStatusTrialing.IsActive())
		assert.False(t, SubscriptionStatusPastDue.IsActive())
		assert.False(t, SubscriptionStatusCanceled.IsActive())
	})
}

func TestPlanCatalog(t *testing.T) {
	config := testStripeConfig()

	t.Run("attaches configured price IDs", func(t *testing.T) {
		plans := PlanCatalog(config)
		require.Len(t, plans, 3)

		premium := PlanForTier(config, directory.TierPremium)
		require.NotNil(t, premium)
		assert.Equal(t, "price_premium", premium.PriceID)
		assert.Equal(t, "usd", premium.Currency)
		assert.True(t, premium.MonthlyPrice.Equal(decimal.NewFromInt(49)))
	})

	t.Run("tiers are ordered by price", func(t *testing.T) {
		plans := PlanCatalog(config)
		for i := 1; i < len(plans); i++ {
			assert.True(t, plans[i-1].MonthlyPrice.LessThan(plans[i].MonthlyPrice))
		}
	})

	t.Run("unknown tier has no plan", func(t *testing.T) {
		assert.Nil(t, PlanForTier(config, directory.MembershipTier("platinum")))
	})
}
