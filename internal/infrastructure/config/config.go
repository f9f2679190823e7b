package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Airtable AirtableConfig
	Clerk    ClerkConfig
	Stripe   StripeConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig selects the cache backend
type CacheConfig struct {
	// Backend is "redis" or "memory". Memory is only suitable for a single
	// instance; Redis is required when running more than one replica.
	Backend string
}

// AirtableConfig holds Airtable API settings
type AirtableConfig struct {
	APIKey          string
	BaseID          string
	MembersTable    string
	BlogTable       string
	CategoriesTable string
	WebhookSecret   string // shared secret for automation callbacks
}

// ClerkConfig holds Clerk API settings
type ClerkConfig struct {
	SecretKey     string
	WebhookSecret string // Svix signing secret (whsec_...)
	JWTPublicKey  string // PEM-encoded RSA public key for session tokens
	APIURL        string
}

// StripeConfig holds Stripe API settings
type StripeConfig struct {
	SecretKey       string
	WebhookSecret   string
	DefaultCurrency string
	PriceIDs        map[string]string // plan name -> Stripe price ID
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with GMC_ prefix (e.g., GMC_STRIPE_SECRET_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("GMC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cache.backend"),
		},
		Airtable: AirtableConfig{
			APIKey:          v.GetString("airtable.api_key"),
			BaseID:          v.GetString("airtable.base_id"),
			MembersTable:    v.GetString("airtable.members_table"),
			BlogTable:       v.GetString("airtable.blog_table"),
			CategoriesTable: v.GetString("airtable.categories_table"),
			WebhookSecret:   v.GetString("airtable.webhook_secret"),
		},
		Clerk: ClerkConfig{
			SecretKey:     v.GetString("clerk.secret_key"),
			WebhookSecret: v.GetString("clerk.webhook_secret"),
			JWTPublicKey:  v.GetString("clerk.jwt_public_key"),
			APIURL:        v.GetString("clerk.api_url"),
		},
		Stripe: StripeConfig{
			SecretKey:       v.GetString("stripe.secret_key"),
			WebhookSecret:   v.GetString("stripe.webhook_secret"),
			DefaultCurrency: v.GetString("stripe.default_currency"),
			PriceIDs:        v.GetStringMapString("stripe.price_ids"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "greenmission-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB; payloads here are small JSON
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// NOTE: CORS origins have no wildcard fallback. An empty list means no
	// cross-origin requests until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "redis"
	}
	if cfg.Airtable.MembersTable == "" {
		cfg.Airtable.MembersTable = "Member Businesses"
	}
	if cfg.Airtable.BlogTable == "" {
		cfg.Airtable.BlogTable = "Blog Posts"
	}
	if cfg.Airtable.CategoriesTable == "" {
		cfg.Airtable.CategoriesTable = "Categories"
	}
	if cfg.Clerk.APIURL == "" {
		cfg.Clerk.APIURL = "https://api.clerk.com/v1"
	}
	if cfg.Stripe.DefaultCurrency == "" {
		cfg.Stripe.DefaultCurrency = "usd"
	}
	if cfg.Stripe.PriceIDs == nil {
		cfg.Stripe.PriceIDs = map[string]string{}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Cache.Backend != "redis" && c.Cache.Backend != "memory" {
		return fmt.Errorf("cache.backend must be \"redis\" or \"memory\", got %q", c.Cache.Backend)
	}

	if c.App.Env == "production" {
		if c.Airtable.APIKey == "" {
			return fmt.Errorf("airtable.api_key is required in production")
		}
		if c.Airtable.BaseID == "" {
			return fmt.Errorf("airtable.base_id is required in production")
		}
		if c.Clerk.SecretKey == "" {
			return fmt.Errorf("clerk.secret_key is required in production")
		}
		if c.Clerk.WebhookSecret == "" {
			return fmt.Errorf("clerk.webhook_secret is required in production")
		}
		if c.Stripe.SecretKey == "" {
			return fmt.Errorf("stripe.secret_key is required in production")
		}
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required in production")
		}
		if c.Cache.Backend == "memory" {
			return fmt.Errorf("cache.backend=memory is not valid in production (entries are not shared across replicas)")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}
