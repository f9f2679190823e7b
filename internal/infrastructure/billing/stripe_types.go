package billing

import (
	"time"
)

// SubscriptionStatus represents the status of a Stripe subscription
type SubscriptionStatus string

const (
	// SubscriptionStatusActive indicates an active subscription
	SubscriptionStatusActive SubscriptionStatus = "active"

	// SubscriptionStatusPastDue indicates payment is past due
	SubscriptionStatusPastDue SubscriptionStatus = "past_due"

	// SubscriptionStatusCanceled indicates the subscription is canceled
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"

	// SubscriptionStatusIncomplete indicates initial payment failed
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"

	// SubscriptionStatusIncompleteExpired indicates incomplete subscription expired
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"

	// SubscriptionStatusTrialing indicates subscription is in trial period
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"

	// SubscriptionStatusUnpaid indicates subscription is unpaid
	SubscriptionStatusUnpaid SubscriptionStatus = "unpaid"

	// SubscriptionStatusPaused indicates subscription is paused
	SubscriptionStatusPaused SubscriptionStatus = "paused"
)

// String returns the string representation of SubscriptionStatus
func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsActive returns true if the subscription is in an active state
func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

// CreateCustomerInput contains input for creating a Stripe customer
type CreateCustomerInput struct {
	BusinessID  string
	ClerkOrgID  string
	Email       string
	Name        string
	Phone       string
	Description string
	Metadata    map[string]string
}

// CustomerOutput describes a Stripe customer
type CustomerOutput struct {
	CustomerID string
	Email      string
	Name       string
	CreatedAt  time.Time
}

// CreateSubscriptionInput contains input for creating a Stripe subscription
type CreateSubscriptionInput struct {
	BusinessID    string
	CustomerID    string // Stripe Customer ID
	Plan          string // Internal plan ID (basic, premium, enterprise)
	PriceID       string // Stripe Price ID (optional, looked up from config if empty)
	TrialDays     int    // Number of trial days (0 = no trial)
	PaymentMethod string // Payment method ID for immediate charge
	Metadata      map[string]string
}

// SubscriptionOutput describes a Stripe subscription
type SubscriptionOutput struct {
	SubscriptionID     string
	CustomerID         string
	Status             SubscriptionStatus
	PriceID            string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
	CancelAt           *time.Time
	CanceledAt         *time.Time
	CancelAtPeriodEnd  bool
	ClientSecret       string // For incomplete subscriptions requiring payment
	LatestInvoiceID    string
}

// UpdateSubscriptionInput contains input for changing a subscription's plan
type UpdateSubscriptionInput struct {
	BusinessID        string
	SubscriptionID    string
	NewPlan           string // New internal plan ID
	NewPriceID        string // New Stripe Price ID (optional, looked up if empty)
	ProrationBehavior string // "create_prorations", "none", "always_invoice"
	Metadata          map[string]string
}

// CancelSubscriptionInput contains input for canceling a Stripe subscription
type CancelSubscriptionInput struct {
	BusinessID        string
	SubscriptionID    string
	CancelAtPeriodEnd bool // If true, cancel at end of billing period; if false, cancel immediately
	Reason            string
}
