package airtable

import (
	"context"

	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/domain/shared"
)

// Field names in the member-businesses table
const (
	FieldBusinessID       = "Business ID"
	FieldSlug             = "Slug"
	FieldName             = "Business Name"
	FieldDescription      = "Description"
	FieldCategories       = "Categories"
	FieldEmail            = "Email"
	FieldPhone            = "Phone"
	FieldWebsite          = "Website"
	FieldCity             = "City"
	FieldState            = "State"
	FieldCountry          = "Country"
	FieldFeatured         = "Featured"
	FieldStatus           = "Status"
	FieldTier             = "Membership Tier"
	FieldClerkOrgID       = "Clerk Org ID"
	FieldStripeCustomerID = "Stripe Customer ID"
)

// MemberStore reads and writes member-business records in Airtable. Airtable
// is the source of truth; the structs returned here are mirrors consumed by
// the caching layer.
type MemberStore struct {
	client *Client
	table  string
}

// NewMemberStore creates a MemberStore over the given table.
func NewMemberStore(client *Client, table string) *MemberStore {
	return &MemberStore{client: client, table: table}
}

// MemberFilter narrows a member listing. Zero-value fields are ignored.
type MemberFilter struct {
	Category        string `json:"category,omitempty"`
	City            string `json:"city,omitempty"`
	Search          string `json:"search,omitempty"` // matches within the business name
	FeaturedOnly    bool   `json:"featured_only,omitempty"`
	IncludeUnlisted bool   `json:"include_unlisted,omitempty"`
	MaxRecords      int    `json:"max_records,omitempty"`
}

func (f MemberFilter) formula() string {
	var terms []string
	if !f.IncludeUnlisted {
		terms = append(terms, Equals(FieldStatus, string(directory.BusinessStatusActive)))
	}
	if f.Category != "" {
		terms = append(terms, Contains(FieldCategories, f.Category))
	}
	if f.City != "" {
		terms = append(terms, Equals(FieldCity, f.City))
	}
	if f.Search != "" {
		terms = append(terms, Contains(FieldName, f.Search))
	}
	if f.FeaturedOnly {
		terms = append(terms, IsTrue(FieldFeatured))
	}
	return And(terms...)
}

// List returns the member businesses matching the filter.
func (s *MemberStore) List(ctx context.Context, filter MemberFilter) ([]directory.Business, error) {
	records, err := s.client.ListRecords(ctx, s.table, ListOptions{
		FilterByFormula: filter.formula(),
		MaxRecords:      filter.MaxRecords,
	})
	if err != nil {
		return nil, err
	}

	businesses := make([]directory.Business, 0, len(records))
	for _, r := range records {
		businesses = append(businesses, businessFromRecord(r))
	}
	return businesses, nil
}

// GetBySlug returns the member business with the given slug, or
// shared.ErrNotFound.
func (s *MemberStore) GetBySlug(ctx context.Context, slug string) (*directory.Business, error) {
	records, err := s.client.ListRecords(ctx, s.table, ListOptions{
		FilterByFormula: Equals(FieldSlug, slug),
		MaxRecords:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, shared.ErrNotFound
	}

	b := businessFromRecord(records[0])
	return &b, nil
}

// GetByClerkOrgID returns the member business owned by the given Clerk
// organization, or shared.ErrNotFound.
func (s *MemberStore) GetByClerkOrgID(ctx context.Context, orgID string) (*directory.Business, error) {
	records, err := s.client.ListRecords(ctx, s.table, ListOptions{
		FilterByFormula: Equals(FieldClerkOrgID, orgID),
		MaxRecords:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, shared.ErrNotFound
	}

	b := businessFromRecord(records[0])
	return &b, nil
}

// Create writes a new member-business record and fills in the assigned
// Airtable record ID.
func (s *MemberStore) Create(ctx context.Context, b *directory.Business) error {
	record, err := s.client.CreateRecord(ctx, s.table, fieldsFromBusiness(b))
	if err != nil {
		return err
	}
	b.RecordID = record.ID
	return nil
}

// Update applies the business's current field values to its record.
func (s *MemberStore) Update(ctx context.Context, b *directory.Business) error {
	if b.RecordID == "" {
		return shared.NewDomainError("MISSING_RECORD_ID", "Business has no Airtable record ID")
	}
	_, err := s.client.UpdateRecord(ctx, s.table, b.RecordID, fieldsFromBusiness(b))
	return err
}

// ListSlugsWithPrefix returns all member slugs starting with prefix.
// Implements directory.IdentifierStore.
func (s *MemberStore) ListSlugsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	records, err := s.client.ListRecords(ctx, s.table, ListOptions{
		FilterByFormula: HasPrefix(FieldSlug, prefix),
		Fields:          []string{FieldSlug},
	})
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(records))
	for _, r := range records {
		if slug := r.StringField(FieldSlug); slug != "" {
			slugs = append(slugs, slug)
		}
	}
	return slugs, nil
}

// ListBusinessIDsByDate returns all business IDs whose date component equals
// date (YYYYMMDD). Implements directory.IdentifierStore.
func (s *MemberStore) ListBusinessIDsByDate(ctx context.Context, date string) ([]string, error) {
	prefix := directory.BusinessIDPrefix + "-" + date + "-"
	records, err := s.client.ListRecords(ctx, s.table, ListOptions{
		FilterByFormula: HasPrefix(FieldBusinessID, prefix),
		Fields:          []string{FieldBusinessID},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		if id := r.StringField(FieldBusinessID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func businessFromRecord(r Record) directory.Business {
	return directory.Business{
		RecordID:         r.ID,
		BusinessID:       r.StringField(FieldBusinessID),
		Slug:             r.StringField(FieldSlug),
		Name:             r.StringField(FieldName),
		Description:      r.StringField(FieldDescription),
		Categories:       r.StringsField(FieldCategories),
		Email:            r.StringField(FieldEmail),
		Phone:            r.StringField(FieldPhone),
		Website:          r.StringField(FieldWebsite),
		City:             r.StringField(FieldCity),
		State:            r.StringField(FieldState),
		Country:          r.StringField(FieldCountry),
		Featured:         r.BoolField(FieldFeatured),
		Status:           directory.BusinessStatus(r.StringField(FieldStatus)),
		Tier:             directory.MembershipTier(r.StringField(FieldTier)),
		ClerkOrgID:       r.StringField(FieldClerkOrgID),
		StripeCustomerID: r.StringField(FieldStripeCustomerID),
	}
}

func fieldsFromBusiness(b *directory.Business) map[string]any {
	fields := map[string]any{
		FieldBusinessID:  b.BusinessID,
		FieldSlug:        b.Slug,
		FieldName:        b.Name,
		FieldDescription: b.Description,
		FieldCategories:  b.Categories,
		FieldEmail:       b.Email,
		FieldPhone:       b.Phone,
		FieldWebsite:     b.Website,
		FieldCity:        b.City,
		FieldState:       b.State,
		FieldCountry:     b.Country,
		FieldFeatured:    b.Featured,
		FieldStatus:      string(b.Status),
		FieldTier:        string(b.Tier),
	}
	if b.ClerkOrgID != "" {
		fields[FieldClerkOrgID] = b.ClerkOrgID
	}
	if b.StripeCustomerID != "" {
		fields[FieldStripeCustomerID] = b.StripeCustomerID
	}
	return fields
}

// Ensure MemberStore implements directory.IdentifierStore
var _ directory.IdentifierStore = (*MemberStore)(nil)
