package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/greenmission/backend/internal/application/billing"
	blogapp "github.com/greenmission/backend/internal/application/blog"
	directoryapp "github.com/greenmission/backend/internal/application/directory"
	membershipapp "github.com/greenmission/backend/internal/application/membership"
	webhooksapp "github.com/greenmission/backend/internal/application/webhooks"
	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/infrastructure/airtable"
	"github.com/greenmission/backend/internal/infrastructure/billing"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"github.com/greenmission/backend/internal/infrastructure/clerk"
	"github.com/greenmission/backend/internal/infrastructure/config"
	"github.com/greenmission/backend/internal/infrastructure/logger"
	"github.com/greenmission/backend/internal/interfaces/http/handler"
	"github.com/greenmission/backend/internal/interfaces/http/middleware"
	"github.com/greenmission/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Green Mission Club backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	clock := shared.SystemClock{}

	// Cache backend: Redis when configured, in-memory for single-instance
	// development setups.
	var (
		cacheBackend cache.Cache
		cachePinger  handler.CachePinger
		idempotency  cache.IdempotencyStore
	)
	switch cfg.Cache.Backend {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cache.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		cacheBackend = redisCache
		cachePinger = redisCache
		idempotency = cache.NewRedisIdempotencyStore(redisCache.GetClient(), "webhook:event")
		log.Info("Redis cache connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port))
	default:
		memCache := cache.NewMemoryCache(clock)
		defer func() {
			_ = memCache.Close()
		}()
		cacheBackend = memCache
		idempotency = cache.NewInMemoryIdempotencyStore(clock)
		log.Warn("Using in-memory cache; entries are not shared across replicas")
	}

	invalidator := cache.NewInvalidator(cacheBackend, log)

	// Airtable is the system of record for the directory and blog.
	airtableClient, err := airtable.NewClient(&airtable.Config{
		APIKey: cfg.Airtable.APIKey,
		BaseID: cfg.Airtable.BaseID,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Airtable client", zap.Error(err))
	}
	memberStore := airtable.NewMemberStore(airtableClient, cfg.Airtable.MembersTable)
	blogStore := airtable.NewBlogStore(airtableClient, cfg.Airtable.BlogTable)
	categoryStore := airtable.NewCategoryStore(airtableClient, cfg.Airtable.CategoriesTable)

	// Clerk provides identity; Stripe provides billing.
	clerkClient, err := clerk.NewClient(&clerk.Config{
		SecretKey: cfg.Clerk.SecretKey,
		APIURL:    cfg.Clerk.APIURL,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Clerk client", zap.Error(err))
	}

	stripeConfig := &billing.StripeConfig{
		SecretKey:       cfg.Stripe.SecretKey,
		WebhookSecret:   cfg.Stripe.WebhookSecret,
		DefaultCurrency: cfg.Stripe.DefaultCurrency,
		PriceIDs:        cfg.Stripe.PriceIDs,
	}
	stripeAdapter, err := billing.NewStripeAdapter(stripeConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe adapter", zap.Error(err))
	}

	// Application services
	idGenerator := directory.NewIdentifierGenerator(memberStore, clock, log)
	memberService := directoryapp.NewMemberService(memberStore, idGenerator, cacheBackend, invalidator, log)
	categoryService := directoryapp.NewCategoryService(categoryStore, cacheBackend, log)
	blogService := blogapp.NewBlogService(blogStore, cacheBackend, log)
	profileService := membershipapp.NewProfileService(clerkClient, memberStore, stripeAdapter, stripeConfig, cacheBackend, log)
	subscriptionService := billingapp.NewSubscriptionService(stripeAdapter, memberStore, stripeConfig, invalidator, log)
	stripeWebhookService := billingapp.NewStripeWebhookService(stripeConfig, stripeAdapter, idempotency, invalidator, cacheBackend, log)
	airtableWebhookService := webhooksapp.NewAirtableWebhookService(cfg.Airtable.WebhookSecret, idempotency, invalidator, log)

	clerkVerifier, err := clerk.NewWebhookVerifier(cfg.Clerk.WebhookSecret, clock)
	if err != nil {
		log.Fatal("Failed to initialize Clerk webhook verifier", zap.Error(err))
	}
	clerkWebhookService := webhooksapp.NewClerkWebhookService(clerkVerifier, idempotency, invalidator, log)

	sessionVerifier, err := clerk.NewSessionVerifier(cfg.Clerk.JWTPublicKey, clock)
	if err != nil {
		log.Fatal("Failed to initialize Clerk session verifier", zap.Error(err))
	}

	// HTTP handlers
	memberHandler := handler.NewMemberHandler(memberService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	blogHandler := handler.NewBlogHandler(blogService)
	profileHandler := handler.NewProfileHandler(profileService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	systemHandler := handler.NewSystemHandler(version, cachePinger)
	stripeWebhookHandler := handler.NewStripeWebhookHandler(stripeWebhookService)
	clerkWebhookHandler := handler.NewClerkWebhookHandler(clerkWebhookService)
	airtableWebhookHandler := handler.NewAirtableWebhookHandler(airtableWebhookService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding validations
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request ID, panic recovery, request
	// logging, security headers, CORS, body limit, rate limit.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, clock)
		engine.Use(middleware.RateLimit(limiter))
	}

	// Routes
	r := router.NewRouter(engine)
	r.Register(router.NewPublicRoutes(memberHandler, categoryHandler, blogHandler, profileHandler, systemHandler))
	r.Register(router.NewMemberRoutes(middleware.RequireAuth(sessionVerifier), memberHandler, profileHandler, subscriptionHandler))
	r.Register(router.NewWebhookRoutes(stripeWebhookHandler, clerkWebhookHandler, airtableWebhookHandler))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
