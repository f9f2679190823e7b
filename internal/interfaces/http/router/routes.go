package router

import (
	"github.com/gin-gonic/gin"

	"github.com/greenmission/backend/internal/interfaces/http/handler"
)

// PublicRoutes registers the unauthenticated read surface of the API:
// the business directory, blog content, plan catalog, and health check.
type PublicRoutes struct {
	members    *handler.MemberHandler
	categories *handler.CategoryHandler
	blog       *handler.BlogHandler
	profile    *handler.ProfileHandler
	system     *handler.SystemHandler
}

// NewPublicRoutes creates the public route registrar
func NewPublicRoutes(
	members *handler.MemberHandler,
	categories *handler.CategoryHandler,
	blog *handler.BlogHandler,
	profile *handler.ProfileHandler,
	system *handler.SystemHandler,
) *PublicRoutes {
	return &PublicRoutes{
		members:    members,
		categories: categories,
		blog:       blog,
		profile:    profile,
		system:     system,
	}
}

// RegisterRoutes implements RouteRegistrar
func (r *PublicRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", r.system.Health)
	rg.GET("/plans", r.profile.ListPlans)
	rg.GET("/categories", r.categories.ListCategories)

	members := rg.Group("/members")
	{
		members.GET("", r.members.ListMembers)
		// /featured must be registered before the :slug wildcard
		members.GET("/featured", r.members.FeaturedMembers)
		members.GET("/:slug", r.members.GetMember)
	}

	blog := rg.Group("/blog")
	{
		blog.GET("", r.blog.ListPosts)
		blog.GET("/:slug", r.blog.GetPost)
	}
}

// MemberRoutes registers the authenticated member surface: profile,
// business registration and editing, and subscription management.
type MemberRoutes struct {
	auth         gin.HandlerFunc
	members      *handler.MemberHandler
	profile      *handler.ProfileHandler
	subscription *handler.SubscriptionHandler
}

// NewMemberRoutes creates the authenticated route registrar. auth is the
// session verification middleware applied to every route in the group.
func NewMemberRoutes(
	auth gin.HandlerFunc,
	members *handler.MemberHandler,
	profile *handler.ProfileHandler,
	subscription *handler.SubscriptionHandler,
) *MemberRoutes {
	return &MemberRoutes{
		auth:         auth,
		members:      members,
		profile:      profile,
		subscription: subscription,
	}
}

// RegisterRoutes implements RouteRegistrar
func (r *MemberRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	authed := rg.Group("")
	authed.Use(r.auth)

	authed.GET("/profile", r.profile.GetProfile)

	authed.POST("/members", r.members.CreateMember)
	authed.PATCH("/members/me", r.members.UpdateMember)

	sub := authed.Group("/subscription")
	{
		sub.POST("", r.subscription.Subscribe)
		sub.PUT("", r.subscription.ChangePlan)
		sub.DELETE("", r.subscription.Cancel)
	}
}

// WebhookRoutes registers the inbound webhook endpoints. These verify
// their own signatures and are never behind session auth.
type WebhookRoutes struct {
	stripe   *handler.StripeWebhookHandler
	clerk    *handler.ClerkWebhookHandler
	airtable *handler.AirtableWebhookHandler
}

// NewWebhookRoutes creates the webhook route registrar
func NewWebhookRoutes(
	stripe *handler.StripeWebhookHandler,
	clerk *handler.ClerkWebhookHandler,
	airtable *handler.AirtableWebhookHandler,
) *WebhookRoutes {
	return &WebhookRoutes{
		stripe:   stripe,
		clerk:    clerk,
		airtable: airtable,
	}
}

// RegisterRoutes implements RouteRegistrar
func (r *WebhookRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/stripe", r.stripe.HandleStripeWebhook)
		webhooks.POST("/clerk", r.clerk.HandleClerkWebhook)
		webhooks.POST("/airtable", r.airtable.HandleAirtableWebhook)
	}
}
