package billing

import (
	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
)

// Plan describes one membership tier as presented to prospective members.
// Monthly prices are authored here; the Stripe price is the billing source
// of truth and is attached from configuration.
type Plan struct {
	Tier         directory.MembershipTier `json:"tier"`
	Name         string                   `json:"name"`
	MonthlyPrice decimal.Decimal          `json:"monthly_price"`
	Currency     string                   `json:"currency"`
	PriceID      string                   `json:"price_id"`
	Features     []string                 `json:"features"`
}

// PlanCatalog returns the membership plans, with Stripe price IDs filled in
// from configuration. Tiers without a configured price are still listed so
// the directory can render them.
func PlanCatalog(config *StripeConfig) []Plan {
	currency := config.DefaultCurrency

	plans := []Plan{
		{
			Tier:         directory.TierBasic,
			Name:         "Basic",
			MonthlyPrice: decimal.NewFromInt(19),
			Currency:     currency,
			Features: []string{
				"Directory listing",
				"Business profile page",
			},
		},
		{
			Tier:         directory.TierPremium,
			Name:         "Premium",
			MonthlyPrice: decimal.NewFromInt(49),
			Currency:     currency,
			Features: []string{
				"Directory listing",
				"Business profile page",
				"Featured placement eligibility",
				"Blog contributions",
			},
		},
		{
			Tier:         directory.TierEnterprise,
			Name:         "Enterprise",
			MonthlyPrice: decimal.NewFromInt(149),
			Currency:     currency,
			Features: []string{
				"Everything in Premium",
				"Multiple locations",
				"Priority support",
			},
		},
	}

	for i := range plans {
		if priceID, ok := config.PriceIDs[string(plans[i].Tier)]; ok {
			plans[i].PriceID = priceID
		}
	}
	return plans
}

// ApplyPrices overlays live Stripe amounts onto the authored catalog,
// matched by price ID. Plans without a live price keep their authored
// amounts, so a partially configured Stripe account still renders.
func ApplyPrices(plans []Plan, prices []*stripe.Price) []Plan {
	byID := make(map[string]*stripe.Price, len(prices))
	for _, p := range prices {
		byID[p.ID] = p
	}

	for i := range plans {
		p, ok := byID[plans[i].PriceID]
		if !ok {
			continue
		}
		plans[i].MonthlyPrice = decimal.NewFromInt(p.UnitAmount).Div(decimal.NewFromInt(100))
		if p.Currency != "" {
			plans[i].Currency = string(p.Currency)
		}
	}
	return plans
}

// PlanForTier returns the plan for a tier, or nil when the tier is unknown.
func PlanForTier(config *StripeConfig, tier directory.MembershipTier) *Plan {
	for _, plan := range PlanCatalog(config) {
		if plan.Tier == tier {
			return &plan
		}
	}
	return nil
}
