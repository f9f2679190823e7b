package cache

import (
	"context"

	"go.uber.org/zap"
)

// EventRefs carries the record identifiers extracted from a webhook payload,
// used to target single-entry cache keys. Unset fields are skipped.
type EventRefs struct {
	UserID         string
	OrgID          string
	CustomerID     string
	SubscriptionID string
	RecordID       string
	Slug           string
}

// Invalidator maps external webhook events to the cache keys and patterns
// that must be purged. Invalidation is synchronous and best-effort: failures
// are logged and never propagated, so webhook handlers always acknowledge.
// The staleness window is bounded by the entry's TTL tier.
type Invalidator struct {
	cache  Cache
	logger *zap.Logger
}

// NewInvalidator creates an Invalidator over the given cache.
func NewInvalidator(c Cache, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{cache: c, logger: logger}
}

// Invalidate purges every key and pattern affected by the given event type.
// Unknown event types purge nothing.
func (i *Invalidator) Invalidate(ctx context.Context, eventType string, refs EventRefs) {
	keys, patterns := targetsFor(eventType, refs)
	if len(keys) == 0 && len(patterns) == 0 {
		i.logger.Debug("no cache targets for event", zap.String("event_type", eventType))
		return
	}

	if len(keys) > 0 {
		if err := i.cache.Del(ctx, keys...); err != nil {
			i.logger.Warn("cache invalidation failed",
				zap.String("event_type", eventType),
				zap.Strings("keys", keys),
				zap.Error(err))
		}
	}

	for _, pattern := range patterns {
		if err := i.cache.DelPattern(ctx, pattern); err != nil {
			i.logger.Warn("cache pattern invalidation failed",
				zap.String("event_type", eventType),
				zap.String("pattern", pattern),
				zap.Error(err))
		}
	}

	i.logger.Debug("invalidated cache for event",
		zap.String("event_type", eventType),
		zap.Strings("keys", keys),
		zap.Strings("patterns", patterns))
}

// InvalidateMembers purges every member-list cache plus the featured-members
// entry. Filter permutations are keyed individually and not tracked, so any
// member write clears the whole namespace.
func (i *Invalidator) InvalidateMembers(ctx context.Context, slug string) {
	refs := EventRefs{Slug: slug}
	i.Invalidate(ctx, "record.updated", refs)
}

// targetsFor maps an event type to the cache keys and glob patterns it
// invalidates.
func targetsFor(eventType string, refs EventRefs) (keys []string, patterns []string) {
	switch eventType {
	// Clerk user lifecycle
	case "user.created", "user.updated", "user.deleted":
		if refs.UserID != "" {
			keys = append(keys, Key(ServiceClerk, "user", refs.UserID))
		}
		patterns = append(patterns, Pattern(ServiceClerk, "users"))

	// Clerk organization lifecycle
	case "organization.created", "organization.updated", "organization.deleted":
		if refs.OrgID != "" {
			keys = append(keys, Key(ServiceClerk, "org", refs.OrgID))
		}
		patterns = append(patterns, Pattern(ServiceClerk, "orgs"))

	case "organizationMembership.created", "organizationMembership.updated", "organizationMembership.deleted":
		if refs.OrgID != "" {
			keys = append(keys, Key(ServiceClerk, "org", refs.OrgID))
		}
		if refs.UserID != "" {
			keys = append(keys, Key(ServiceClerk, "memberships", refs.UserID))
		}

	// Stripe subscription lifecycle
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		if refs.SubscriptionID != "" {
			keys = append(keys, Key(ServiceStripe, "subscription", refs.SubscriptionID))
		}
		if refs.CustomerID != "" {
			keys = append(keys, Key(ServiceStripe, "customer", refs.CustomerID))
		}
		patterns = append(patterns, Pattern(ServiceStripe, "subscriptions"))

	case "invoice.paid", "invoice.payment_failed":
		if refs.CustomerID != "" {
			keys = append(keys, Key(ServiceStripe, "customer", refs.CustomerID))
		}

	case "price.created", "price.updated", "price.deleted":
		keys = append(keys, Key(ServiceStripe, "prices"))

	// Airtable automation callbacks for the members table
	case "record.created", "record.updated", "record.deleted":
		if refs.Slug != "" {
			keys = append(keys, Key(ServiceAirtable, "member", refs.Slug))
		}
		if refs.RecordID != "" {
			keys = append(keys, Key(ServiceAirtable, "record", refs.RecordID))
		}
		keys = append(keys, Key(ServiceAirtable, "featured-members"))
		patterns = append(patterns, Pattern(ServiceAirtable, "members"))
	}

	return keys, patterns
}
