package airtable

import (
	"context"

	"github.com/greenmission/backend/internal/domain/directory"
)

// Field names in the categories table
const (
	FieldCategoryName        = "Name"
	FieldCategorySlug        = "Slug"
	FieldCategoryDescription = "Description"
	FieldCategoryActive      = "Active"
)

// CategoryStore reads directory-category records from Airtable.
type CategoryStore struct {
	client *Client
	table  string
}

// NewCategoryStore creates a CategoryStore over the given table.
func NewCategoryStore(client *Client, table string) *CategoryStore {
	return &CategoryStore{client: client, table: table}
}

// ListActive returns the categories businesses can be listed under.
func (s *CategoryStore) ListActive(ctx context.Context) ([]directory.Category, error) {
	records, err := s.client.ListRecords(ctx, s.table, ListOptions{
		FilterByFormula: IsTrue(FieldCategoryActive),
	})
	if err != nil {
		return nil, err
	}

	categories := make([]directory.Category, 0, len(records))
	for _, r := range records {
		categories = append(categories, directory.Category{
			RecordID:    r.ID,
			Name:        r.StringField(FieldCategoryName),
			Slug:        r.StringField(FieldCategorySlug),
			Description: r.StringField(FieldCategoryDescription),
		})
	}
	return categories, nil
}
