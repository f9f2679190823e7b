package directory

import (
	"strings"

	"github.com/greenmission/backend/internal/domain/shared"
)

// BusinessStatus represents a member business's directory visibility state
type BusinessStatus string

const (
	BusinessStatusActive   BusinessStatus = "active"
	BusinessStatusPending  BusinessStatus = "pending"  // Awaiting approval
	BusinessStatusInactive BusinessStatus = "inactive" // Lapsed membership
)

// MembershipTier represents the membership plan a business is on
type MembershipTier string

const (
	TierBasic      MembershipTier = "basic"
	TierPremium    MembershipTier = "premium"
	TierEnterprise MembershipTier = "enterprise"
)

// Business is the local mirror of a member-business record. Airtable owns
// the record; this struct carries a copy with a freshness bound and is never
// the source of truth.
type Business struct {
	RecordID         string         `json:"record_id"` // Airtable record ID
	BusinessID       string         `json:"business_id"`
	Slug             string         `json:"slug"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Categories       []string       `json:"categories,omitempty"`
	Email            string         `json:"email,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	Website          string         `json:"website,omitempty"`
	City             string         `json:"city,omitempty"`
	State            string         `json:"state,omitempty"`
	Country          string         `json:"country,omitempty"`
	Featured         bool           `json:"featured"`
	Status           BusinessStatus `json:"status"`
	Tier             MembershipTier `json:"tier,omitempty"`
	ClerkOrgID       string         `json:"clerk_org_id,omitempty"`
	StripeCustomerID string         `json:"stripe_customer_id,omitempty"`
}

// NewBusiness creates a business mirror with its assigned identifiers.
// New businesses start pending until approved for the public directory.
func NewBusiness(name string, id BusinessIdentifier) (*Business, error) {
	if err := validateBusinessName(name); err != nil {
		return nil, err
	}
	if !IsValidSlug(id.Slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug does not satisfy the directory slug format")
	}

	return &Business{
		BusinessID: id.BusinessID,
		Slug:       id.Slug,
		Name:       strings.TrimSpace(name),
		Status:     BusinessStatusPending,
		Tier:       TierBasic,
	}, nil
}

// IsListed reports whether the business should appear in the public directory.
func (b *Business) IsListed() bool {
	return b.Status == BusinessStatusActive
}

func validateBusinessName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Business name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Business name cannot exceed 200 characters")
	}
	return nil
}

// Category is a directory category a business can be listed under.
type Category struct {
	RecordID    string `json:"record_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}
