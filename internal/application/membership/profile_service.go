package membership

import (
	"context"
	"errors"

	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/infrastructure/billing"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"github.com/greenmission/backend/internal/infrastructure/clerk"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// UserDirectory reads identities from Clerk. *clerk.Client satisfies it.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*clerk.User, error)
	GetOrganization(ctx context.Context, orgID string) (*clerk.Organization, error)
}

// BusinessLookup resolves the member business owned by a Clerk organization.
type BusinessLookup interface {
	GetByClerkOrgID(ctx context.Context, orgID string) (*directory.Business, error)
}

// SubscriptionReader reads billing state from Stripe. *billing.StripeAdapter
// satisfies it.
type SubscriptionReader interface {
	ListSubscriptions(ctx context.Context, customerID string) ([]*billing.SubscriptionOutput, error)
	ListPrices(ctx context.Context) ([]*stripe.Price, error)
}

// Profile is the assembled dashboard view of a member: who they are, the
// organization they act for, their directory listing, and their billing
// state. Legs that are unavailable are left nil rather than failing the
// whole profile.
type Profile struct {
	User         *clerk.User                 `json:"user"`
	Organization *clerk.Organization         `json:"organization,omitempty"`
	Business     *directory.Business         `json:"business,omitempty"`
	Subscription *billing.SubscriptionOutput `json:"subscription,omitempty"`
	Plan         *billing.Plan               `json:"plan,omitempty"`
}

// ProfileService assembles member dashboard profiles. Each upstream leg is
// cached separately at its own tier: user data moves often, organization
// data less so, and the plan catalog is effectively static.
type ProfileService struct {
	users         UserDirectory
	businesses    BusinessLookup
	subscriptions SubscriptionReader
	stripeConfig  *billing.StripeConfig
	cache         cache.Cache
	logger        *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	users UserDirectory,
	businesses BusinessLookup,
	subscriptions SubscriptionReader,
	stripeConfig *billing.StripeConfig,
	c cache.Cache,
	logger *zap.Logger,
) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		users:         users,
		businesses:    businesses,
		subscriptions: subscriptions,
		stripeConfig:  stripeConfig,
		cache:         c,
		logger:        logger,
	}
}

// GetProfile assembles the dashboard profile for an authenticated session.
// The user leg is required; the organization, business, and subscription
// legs are filled in when the session carries an active organization.
func (s *ProfileService) GetProfile(ctx context.Context, userID, orgID string) (*Profile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	if orgID == "" {
		return profile, nil
	}

	org, err := s.getOrganization(ctx, orgID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("Session organization not found", zap.String("org_id", orgID))
		return profile, nil
	}
	profile.Organization = org

	business, err := s.businesses.GetByClerkOrgID(ctx, orgID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		// Organization exists but has not registered a business yet.
		return profile, nil
	}
	profile.Business = business
	profile.Plan = billing.PlanForTier(s.stripeConfig, business.Tier)

	if business.StripeCustomerID != "" {
		sub, err := s.getCurrentSubscription(ctx, business.StripeCustomerID)
		if err != nil {
			// Billing being down should not take the dashboard with it.
			s.logger.Warn("Failed to load subscription for profile",
				zap.String("customer_id", business.StripeCustomerID),
				zap.Error(err))
		} else {
			profile.Subscription = sub
		}
	}

	return profile, nil
}

func (s *ProfileService) getUser(ctx context.Context, userID string) (*clerk.User, error) {
	key := cache.Key(cache.ServiceClerk, "user", userID)
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLShort, func(ctx context.Context) (*clerk.User, error) {
		return s.users.GetUser(ctx, userID)
	})
}

func (s *ProfileService) getOrganization(ctx context.Context, orgID string) (*clerk.Organization, error) {
	key := cache.Key(cache.ServiceClerk, "org", orgID)
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLMedium, func(ctx context.Context) (*clerk.Organization, error) {
		return s.users.GetOrganization(ctx, orgID)
	})
}

// getCurrentSubscription returns the customer's most relevant subscription:
// the first active one, else the first returned.
func (s *ProfileService) getCurrentSubscription(ctx context.Context, customerID string) (*billing.SubscriptionOutput, error) {
	key := cache.Key(cache.ServiceStripe, "customer", customerID)
	subs, err := cache.GetOrSet(ctx, s.cache, key, cache.TTLShort, func(ctx context.Context) ([]*billing.SubscriptionOutput, error) {
		return s.subscriptions.ListSubscriptions(ctx, customerID)
	})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	for _, sub := range subs {
		if sub.Status.IsActive() {
			return sub, nil
		}
	}
	return subs[0], nil
}

// Plans returns the membership plan catalog with live Stripe amounts
// overlaid on the authored tiers. Pricing changes on the Stripe side, not
// between deployments, so the cached copy sits at the longest tier.
func (s *ProfileService) Plans(ctx context.Context) ([]billing.Plan, error) {
	key := cache.Key(cache.ServiceStripe, "prices")
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLVeryLong, func(ctx context.Context) ([]billing.Plan, error) {
		plans := billing.PlanCatalog(s.stripeConfig)
		prices, err := s.subscriptions.ListPrices(ctx)
		if err != nil {
			// Checkout runs off configured price IDs either way; serve
			// the authored amounts until Stripe is reachable again.
			s.logger.Warn("Failed to list Stripe prices", zap.Error(err))
			return plans, nil
		}
		return billing.ApplyPrices(plans, prices), nil
	})
}
