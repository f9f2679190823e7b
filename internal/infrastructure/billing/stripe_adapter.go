package billing

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/price"
	"github.com/stripe/stripe-go/v81/subscription"
	"go.uber.org/zap"
)

// StripeAdapter implements Stripe billing operations for membership
// subscriptions
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreateCustomer creates a new customer in Stripe
func (a *StripeAdapter) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CustomerOutput, error) {
	a.logger.Debug("Creating Stripe customer",
		zap.String("business_id", input.BusinessID),
		zap.String("email", input.Email))

	params := &stripe.CustomerParams{
		Email: stripe.String(input.Email),
		Name:  stripe.String(input.Name),
	}
	params.Context = ctx

	if input.Phone != "" {
		params.Phone = stripe.String(input.Phone)
	}
	if input.Description != "" {
		params.Description = stripe.String(input.Description)
	}

	params.Metadata = map[string]string{
		"business_id":  input.BusinessID,
		"clerk_org_id": input.ClerkOrgID,
	}
	maps.Copy(params.Metadata, input.Metadata)

	cust, err := customer.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe customer",
			zap.String("business_id", input.BusinessID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	a.logger.Info("Created Stripe customer",
		zap.String("business_id", input.BusinessID),
		zap.String("customer_id", cust.ID))

	return customerOutput(cust), nil
}

// CreateSubscription creates a new subscription in Stripe
func (a *StripeAdapter) CreateSubscription(ctx context.Context, input CreateSubscriptionInput) (*SubscriptionOutput, error) {
	a.logger.Debug("Creating Stripe subscription",
		zap.String("business_id", input.BusinessID),
		zap.String("customer_id", input.CustomerID),
		zap.String("plan", input.Plan))

	priceID := input.PriceID
	if priceID == "" {
		var err error
		priceID, err = a.config.GetPriceID(input.Plan)
		if err != nil {
			return nil, err
		}
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(input.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{
				Price: stripe.String(priceID),
			},
		},
	}
	params.Context = ctx

	if input.TrialDays > 0 {
		params.TrialPeriodDays = stripe.Int64(int64(input.TrialDays))
	}
	if input.PaymentMethod != "" {
		params.DefaultPaymentMethod = stripe.String(input.PaymentMethod)
	}

	params.PaymentBehavior = stripe.String("default_incomplete")
	params.AddExpand("latest_invoice.payment_intent")

	params.Metadata = map[string]string{
		"business_id": input.BusinessID,
		"plan":        input.Plan,
	}
	maps.Copy(params.Metadata, input.Metadata)

	sub, err := subscription.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe subscription",
			zap.String("business_id", input.BusinessID),
			zap.String("customer_id", input.CustomerID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create subscription: %w", err)
	}

	a.logger.Info("Created Stripe subscription",
		zap.String("business_id", input.BusinessID),
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(sub.Status)))

	return subscriptionOutput(sub), nil
}

// UpdateSubscription moves a subscription to a different plan
func (a *StripeAdapter) UpdateSubscription(ctx context.Context, input UpdateSubscriptionInput) (*SubscriptionOutput, error) {
	a.logger.Debug("Updating Stripe subscription",
		zap.String("business_id", input.BusinessID),
		zap.String("subscription_id", input.SubscriptionID),
		zap.String("new_plan", input.NewPlan))

	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx
	sub, err := subscription.Get(input.SubscriptionID, getParams)
	if err != nil {
		a.logger.Error("Failed to get Stripe subscription",
			zap.String("subscription_id", input.SubscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to get subscription: %w", err)
	}

	if len(sub.Items.Data) == 0 {
		return nil, fmt.Errorf("stripe: subscription has no items")
	}
	itemID := sub.Items.Data[0].ID

	newPriceID := input.NewPriceID
	if newPriceID == "" {
		newPriceID, err = a.config.GetPriceID(input.NewPlan)
		if err != nil {
			return nil, err
		}
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(newPriceID),
			},
		},
	}
	params.Context = ctx

	if input.ProrationBehavior != "" {
		params.ProrationBehavior = stripe.String(input.ProrationBehavior)
	} else {
		params.ProrationBehavior = stripe.String("create_prorations")
	}

	params.Metadata = map[string]string{"plan": input.NewPlan}
	maps.Copy(params.Metadata, input.Metadata)

	updated, err := subscription.Update(input.SubscriptionID, params)
	if err != nil {
		a.logger.Error("Failed to update Stripe subscription",
			zap.String("subscription_id", input.SubscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to update subscription: %w", err)
	}

	a.logger.Info("Updated Stripe subscription",
		zap.String("subscription_id", updated.ID),
		zap.String("new_price", newPriceID))

	return subscriptionOutput(updated), nil
}

// CancelSubscription cancels a subscription
func (a *StripeAdapter) CancelSubscription(ctx context.Context, input CancelSubscriptionInput) (*SubscriptionOutput, error) {
	a.logger.Debug("Canceling Stripe subscription",
		zap.String("business_id", input.BusinessID),
		zap.String("subscription_id", input.SubscriptionID),
		zap.Bool("cancel_at_period_end", input.CancelAtPeriodEnd))

	var sub *stripe.Subscription
	var err error

	if input.CancelAtPeriodEnd {
		params := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		params.Context = ctx
		if input.Reason != "" {
			params.CancellationDetails = &stripe.SubscriptionCancellationDetailsParams{
				Comment: stripe.String(input.Reason),
			}
		}
		sub, err = subscription.Update(input.SubscriptionID, params)
	} else {
		params := &stripe.SubscriptionCancelParams{}
		params.Context = ctx
		if input.Reason != "" {
			params.CancellationDetails = &stripe.SubscriptionCancelCancellationDetailsParams{
				Comment: stripe.String(input.Reason),
			}
		}
		sub, err = subscription.Cancel(input.SubscriptionID, params)
	}

	if err != nil {
		a.logger.Error("Failed to cancel Stripe subscription",
			zap.String("subscription_id", input.SubscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to cancel subscription: %w", err)
	}

	a.logger.Info("Canceled Stripe subscription",
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(sub.Status)),
		zap.Bool("cancel_at_period_end", sub.CancelAtPeriodEnd))

	return subscriptionOutput(sub), nil
}

// GetSubscription retrieves a subscription by ID
func (a *StripeAdapter) GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionOutput, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("latest_invoice")

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		a.logger.Error("Failed to get Stripe subscription",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to get subscription: %w", err)
	}

	return subscriptionOutput(sub), nil
}

// ListSubscriptions lists all subscriptions for a customer
func (a *StripeAdapter) ListSubscriptions(ctx context.Context, customerID string) ([]*SubscriptionOutput, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx

	var subscriptions []*SubscriptionOutput
	iter := subscription.List(params)
	for iter.Next() {
		subscriptions = append(subscriptions, subscriptionOutput(iter.Subscription()))
	}

	if err := iter.Err(); err != nil {
		a.logger.Error("Failed to list Stripe subscriptions",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to list subscriptions: %w", err)
	}

	return subscriptions, nil
}

// ListPrices lists the Stripe prices backing the membership tiers
func (a *StripeAdapter) ListPrices(ctx context.Context) ([]*stripe.Price, error) {
	params := &stripe.PriceListParams{
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.AddExpand("data.product")

	var prices []*stripe.Price
	iter := price.List(params)
	for iter.Next() {
		prices = append(prices, iter.Price())
	}

	if err := iter.Err(); err != nil {
		a.logger.Error("Failed to list Stripe prices", zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to list prices: %w", err)
	}

	return prices, nil
}

func customerOutput(cust *stripe.Customer) *CustomerOutput {
	return &CustomerOutput{
		CustomerID: cust.ID,
		Email:      cust.Email,
		Name:       cust.Name,
		CreatedAt:  time.Unix(cust.Created, 0),
	}
}

func subscriptionOutput(sub *stripe.Subscription) *SubscriptionOutput {
	output := &SubscriptionOutput{
		SubscriptionID:     sub.ID,
		Status:             mapStripeSubscriptionStatus(sub.Status),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}

	if sub.Customer != nil {
		output.CustomerID = sub.Customer.ID
	}
	if len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		output.PriceID = sub.Items.Data[0].Price.ID
	}

	if sub.TrialStart > 0 {
		t := time.Unix(sub.TrialStart, 0)
		output.TrialStart = &t
	}
	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0)
		output.TrialEnd = &t
	}
	if sub.CancelAt > 0 {
		t := time.Unix(sub.CancelAt, 0)
		output.CancelAt = &t
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0)
		output.CanceledAt = &t
	}

	if sub.LatestInvoice != nil {
		output.LatestInvoiceID = sub.LatestInvoice.ID
		if sub.LatestInvoice.PaymentIntent != nil {
			output.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
		}
	}

	return output
}

// mapStripeSubscriptionStatus maps Stripe subscription status to our internal status
func mapStripeSubscriptionStatus(status stripe.SubscriptionStatus) SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue:
		return SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled:
		return SubscriptionStatusCanceled
	case stripe.SubscriptionStatusIncomplete:
		return SubscriptionStatusIncomplete
	case stripe.SubscriptionStatusIncompleteExpired:
		return SubscriptionStatusIncompleteExpired
	case stripe.SubscriptionStatusTrialing:
		return SubscriptionStatusTrialing
	case stripe.SubscriptionStatusUnpaid:
		return SubscriptionStatusUnpaid
	case stripe.SubscriptionStatusPaused:
		return SubscriptionStatusPaused
	default:
		return SubscriptionStatus(status)
	}
}
