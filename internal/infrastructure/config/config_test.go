package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "greenmission-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "Member Businesses", cfg.Airtable.MembersTable)
	assert.Equal(t, "https://api.clerk.com/v1", cfg.Clerk.APIURL)
	assert.Equal(t, "usd", cfg.Stripe.DefaultCurrency)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins, "no wildcard CORS default")
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.App.Port = "9090"
	cfg.Cache.Backend = "memory"
	applyDefaults(cfg)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("development passes with defaults", func(t *testing.T) {
		require.NoError(t, base().validate())
	})

	t.Run("rejects unknown cache backend", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Backend = "memcached"
		assert.ErrorContains(t, cfg.validate(), "cache.backend")
	})

	t.Run("production requires API credentials", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		assert.ErrorContains(t, cfg.validate(), "airtable.api_key")
	})

	t.Run("production rejects memory cache", func(t *testing.T) {
		cfg := productionConfig()
		cfg.Cache.Backend = "memory"
		assert.ErrorContains(t, cfg.validate(), "cache.backend=memory")
	})

	t.Run("production rejects wildcard CORS", func(t *testing.T) {
		cfg := productionConfig()
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.ErrorContains(t, cfg.validate(), "cors_allow_origins")
	})

	t.Run("fully configured production passes", func(t *testing.T) {
		require.NoError(t, productionConfig().validate())
	})
}

// productionConfig returns a config that satisfies production validation.
func productionConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"
	cfg.Airtable.APIKey = "pat_xxx"
	cfg.Airtable.BaseID = "appXXXX"
	cfg.Clerk.SecretKey = "sk_live_xxx"
	cfg.Clerk.WebhookSecret = "whsec_xxx"
	cfg.Stripe.SecretKey = "sk_live_xxx"
	cfg.Stripe.WebhookSecret = "whsec_xxx"
	cfg.HTTP.CORSAllowOrigins = []string{"https://greenmission.example.com"}
	return cfg
}
