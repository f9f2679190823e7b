package directory

import (
	"context"

	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/infrastructure/airtable"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// MemberStore is the persistence the directory needs. *airtable.MemberStore
// satisfies it.
type MemberStore interface {
	List(ctx context.Context, filter airtable.MemberFilter) ([]directory.Business, error)
	GetBySlug(ctx context.Context, slug string) (*directory.Business, error)
	GetByClerkOrgID(ctx context.Context, orgID string) (*directory.Business, error)
	Create(ctx context.Context, b *directory.Business) error
	Update(ctx context.Context, b *directory.Business) error
}

// MemberService serves the public business directory. Reads go through the
// cache; writes go to Airtable and synchronously invalidate the affected
// keys so the next read sees fresh data.
type MemberService struct {
	store       MemberStore
	ids         *directory.IdentifierGenerator
	cache       cache.Cache
	invalidator *cache.Invalidator
	logger      *zap.Logger
}

// NewMemberService creates a new MemberService
func NewMemberService(
	store MemberStore,
	ids *directory.IdentifierGenerator,
	c cache.Cache,
	invalidator *cache.Invalidator,
	logger *zap.Logger,
) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{
		store:       store,
		ids:         ids,
		cache:       c,
		invalidator: invalidator,
		logger:      logger,
	}
}

// ListMembers lists directory members matching the filter. Each distinct
// filter combination gets its own cache entry.
func (s *MemberService) ListMembers(ctx context.Context, filter airtable.MemberFilter) ([]directory.Business, error) {
	key := cache.OptionsKey(cache.ServiceAirtable, "members", filter)
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLMedium, func(ctx context.Context) ([]directory.Business, error) {
		return s.store.List(ctx, filter)
	})
}

// GetMemberBySlug returns one member's public profile.
func (s *MemberService) GetMemberBySlug(ctx context.Context, slug string) (*directory.Business, error) {
	if !directory.IsValidSlug(slug) {
		return nil, directory.ErrInvalidSlug
	}
	key := cache.Key(cache.ServiceAirtable, "member", slug)
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLMedium, func(ctx context.Context) (*directory.Business, error) {
		return s.store.GetBySlug(ctx, slug)
	})
}

// FeaturedMembers returns the businesses highlighted on the home page.
func (s *MemberService) FeaturedMembers(ctx context.Context) ([]directory.Business, error) {
	key := cache.Key(cache.ServiceAirtable, "featured-members")
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLLong, func(ctx context.Context) ([]directory.Business, error) {
		return s.store.List(ctx, airtable.MemberFilter{FeaturedOnly: true})
	})
}

// CreateBusinessInput contains the submitted details of a new member business
type CreateBusinessInput struct {
	Name             string
	Description      string
	Categories       []string
	Email            string
	Phone            string
	Website          string
	City             string
	State            string
	Country          string
	ClerkOrgID       string
	StripeCustomerID string
}

// CreateBusiness registers a new member business: generates its permanent
// identifiers, persists it, and invalidates the directory listings.
func (s *MemberService) CreateBusiness(ctx context.Context, input CreateBusinessInput) (*directory.Business, error) {
	id := s.ids.Generate(ctx, input.Name)

	business, err := directory.NewBusiness(input.Name, id)
	if err != nil {
		return nil, err
	}
	business.Description = input.Description
	business.Categories = input.Categories
	business.Email = input.Email
	business.Phone = input.Phone
	business.Website = input.Website
	business.City = input.City
	business.State = input.State
	business.Country = input.Country
	business.ClerkOrgID = input.ClerkOrgID
	business.StripeCustomerID = input.StripeCustomerID

	if err := s.store.Create(ctx, business); err != nil {
		return nil, err
	}

	s.logger.Info("Created member business",
		zap.String("business_id", business.BusinessID),
		zap.String("slug", business.Slug))

	s.invalidator.InvalidateMembers(ctx, business.Slug)
	return business, nil
}

// UpdateBusiness persists changes to an existing member business and
// invalidates its cached profile and the listings containing it.
func (s *MemberService) UpdateBusiness(ctx context.Context, business *directory.Business) error {
	if err := s.store.Update(ctx, business); err != nil {
		return err
	}

	s.logger.Info("Updated member business",
		zap.String("business_id", business.BusinessID),
		zap.String("slug", business.Slug))

	s.invalidator.InvalidateMembers(ctx, business.Slug)
	return nil
}

// GetMemberByClerkOrgID resolves the member business owned by a Clerk
// organization. Used by the dashboard, so it bypasses the public cache.
func (s *MemberService) GetMemberByClerkOrgID(ctx context.Context, orgID string) (*directory.Business, error) {
	return s.store.GetByClerkOrgID(ctx, orgID)
}
