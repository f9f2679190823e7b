package billing

import (
	"context"
	"fmt"

	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/infrastructure/billing"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// StripeGateway is the slice of the Stripe adapter the subscription flow
// uses. *billing.StripeAdapter satisfies it.
type StripeGateway interface {
	CreateCustomer(ctx context.Context, input billing.CreateCustomerInput) (*billing.CustomerOutput, error)
	CreateSubscription(ctx context.Context, input billing.CreateSubscriptionInput) (*billing.SubscriptionOutput, error)
	UpdateSubscription(ctx context.Context, input billing.UpdateSubscriptionInput) (*billing.SubscriptionOutput, error)
	CancelSubscription(ctx context.Context, input billing.CancelSubscriptionInput) (*billing.SubscriptionOutput, error)
	ListSubscriptions(ctx context.Context, customerID string) ([]*billing.SubscriptionOutput, error)
}

// BusinessStore is the member persistence the subscription flow needs.
type BusinessStore interface {
	GetByClerkOrgID(ctx context.Context, orgID string) (*directory.Business, error)
	Update(ctx context.Context, b *directory.Business) error
}

// SubscriptionService runs the membership checkout flow against Stripe and
// keeps the Airtable business record in step with billing state.
type SubscriptionService struct {
	gateway     StripeGateway
	businesses  BusinessStore
	config      *billing.StripeConfig
	invalidator *cache.Invalidator
	logger      *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	gateway StripeGateway,
	businesses BusinessStore,
	config *billing.StripeConfig,
	invalidator *cache.Invalidator,
	logger *zap.Logger,
) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{
		gateway:     gateway,
		businesses:  businesses,
		config:      config,
		invalidator: invalidator,
		logger:      logger,
	}
}

// SubscribeInput contains input for starting a membership subscription
type SubscribeInput struct {
	ClerkOrgID    string
	Tier          directory.MembershipTier
	Email         string
	PaymentMethod string
	TrialDays     int
}

// Subscribe starts a paid membership for the business owned by the given
// organization. A Stripe customer is created on first subscription and its
// ID stored on the business record.
func (s *SubscriptionService) Subscribe(ctx context.Context, input SubscribeInput) (*billing.SubscriptionOutput, error) {
	plan := billing.PlanForTier(s.config, input.Tier)
	if plan == nil {
		return nil, shared.NewDomainError("UNKNOWN_TIER", fmt.Sprintf("Unknown membership tier: %s", input.Tier))
	}

	business, err := s.businesses.GetByClerkOrgID(ctx, input.ClerkOrgID)
	if err != nil {
		return nil, err
	}

	if business.StripeCustomerID == "" {
		customer, err := s.gateway.CreateCustomer(ctx, billing.CreateCustomerInput{
			BusinessID: business.BusinessID,
			ClerkOrgID: business.ClerkOrgID,
			Email:      input.Email,
			Name:       business.Name,
		})
		if err != nil {
			return nil, err
		}
		business.StripeCustomerID = customer.CustomerID
		if err := s.businesses.Update(ctx, business); err != nil {
			return nil, fmt.Errorf("failed to store customer ID: %w", err)
		}
	}

	sub, err := s.gateway.CreateSubscription(ctx, billing.CreateSubscriptionInput{
		BusinessID:    business.BusinessID,
		CustomerID:    business.StripeCustomerID,
		Plan:          string(input.Tier),
		PaymentMethod: input.PaymentMethod,
		TrialDays:     input.TrialDays,
	})
	if err != nil {
		return nil, err
	}

	business.Tier = input.Tier
	if err := s.businesses.Update(ctx, business); err != nil {
		s.logger.Error("Failed to update business tier after subscribe",
			zap.String("business_id", business.BusinessID),
			zap.Error(err))
	}

	s.logger.Info("Started membership subscription",
		zap.String("business_id", business.BusinessID),
		zap.String("subscription_id", sub.SubscriptionID),
		zap.String("tier", string(input.Tier)))

	s.invalidator.InvalidateMembers(ctx, business.Slug)
	return sub, nil
}

// ChangePlan moves the business's subscription to a different tier.
func (s *SubscriptionService) ChangePlan(ctx context.Context, clerkOrgID string, tier directory.MembershipTier) (*billing.SubscriptionOutput, error) {
	if billing.PlanForTier(s.config, tier) == nil {
		return nil, shared.NewDomainError("UNKNOWN_TIER", fmt.Sprintf("Unknown membership tier: %s", tier))
	}

	business, sub, err := s.currentSubscription(ctx, clerkOrgID)
	if err != nil {
		return nil, err
	}

	updated, err := s.gateway.UpdateSubscription(ctx, billing.UpdateSubscriptionInput{
		BusinessID:     business.BusinessID,
		SubscriptionID: sub.SubscriptionID,
		NewPlan:        string(tier),
	})
	if err != nil {
		return nil, err
	}

	business.Tier = tier
	if err := s.businesses.Update(ctx, business); err != nil {
		s.logger.Error("Failed to update business tier after plan change",
			zap.String("business_id", business.BusinessID),
			zap.Error(err))
	}

	s.logger.Info("Changed membership plan",
		zap.String("business_id", business.BusinessID),
		zap.String("subscription_id", updated.SubscriptionID),
		zap.String("tier", string(tier)))

	s.invalidator.InvalidateMembers(ctx, business.Slug)
	return updated, nil
}

// Cancel ends the business's subscription at the end of the paid period.
func (s *SubscriptionService) Cancel(ctx context.Context, clerkOrgID, reason string) (*billing.SubscriptionOutput, error) {
	business, sub, err := s.currentSubscription(ctx, clerkOrgID)
	if err != nil {
		return nil, err
	}

	canceled, err := s.gateway.CancelSubscription(ctx, billing.CancelSubscriptionInput{
		BusinessID:        business.BusinessID,
		SubscriptionID:    sub.SubscriptionID,
		CancelAtPeriodEnd: true,
		Reason:            reason,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Canceled membership subscription",
		zap.String("business_id", business.BusinessID),
		zap.String("subscription_id", canceled.SubscriptionID))

	s.invalidator.InvalidateMembers(ctx, business.Slug)
	return canceled, nil
}

// currentSubscription resolves the business and its active subscription.
func (s *SubscriptionService) currentSubscription(ctx context.Context, clerkOrgID string) (*directory.Business, *billing.SubscriptionOutput, error) {
	business, err := s.businesses.GetByClerkOrgID(ctx, clerkOrgID)
	if err != nil {
		return nil, nil, err
	}
	if business.StripeCustomerID == "" {
		return nil, nil, shared.NewDomainError("NO_SUBSCRIPTION", "Business has no billing account")
	}

	subs, err := s.gateway.ListSubscriptions(ctx, business.StripeCustomerID)
	if err != nil {
		return nil, nil, err
	}
	for _, sub := range subs {
		if sub.Status.IsActive() {
			return business, sub, nil
		}
	}
	return nil, nil, shared.NewDomainError("NO_SUBSCRIPTION", "Business has no active subscription")
}
