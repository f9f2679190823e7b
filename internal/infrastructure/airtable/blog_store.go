package airtable

import (
	"context"
	"time"

	"github.com/greenmission/backend/internal/domain/blog"
	"github.com/greenmission/backend/internal/domain/shared"
)

// Field names in the blog-posts table
const (
	FieldPostSlug        = "Slug"
	FieldPostTitle       = "Title"
	FieldPostExcerpt     = "Excerpt"
	FieldPostBody        = "Body"
	FieldPostAuthor      = "Author"
	FieldPostTags        = "Tags"
	FieldPostStatus      = "Status"
	FieldPostPublishedAt = "Published At"
)

// BlogStore reads blog-post records from Airtable.
type BlogStore struct {
	client *Client
	table  string
}

// NewBlogStore creates a BlogStore over the given table.
func NewBlogStore(client *Client, table string) *BlogStore {
	return &BlogStore{client: client, table: table}
}

// ListPublished returns all published posts.
func (s *BlogStore) ListPublished(ctx context.Context) ([]blog.Post, error) {
	records, err := s.client.ListRecords(ctx, s.table, ListOptions{
		FilterByFormula: Equals(FieldPostStatus, string(blog.PostStatusPublished)),
	})
	if err != nil {
		return nil, err
	}

	posts := make([]blog.Post, 0, len(records))
	for _, r := range records {
		posts = append(posts, postFromRecord(r))
	}
	return posts, nil
}

// GetBySlug returns the post with the given slug, or shared.ErrNotFound.
func (s *BlogStore) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	records, err := s.client.ListRecords(ctx, s.table, ListOptions{
		FilterByFormula: Equals(FieldPostSlug, slug),
		MaxRecords:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, shared.ErrNotFound
	}

	p := postFromRecord(records[0])
	return &p, nil
}

func postFromRecord(r Record) blog.Post {
	p := blog.Post{
		RecordID: r.ID,
		Slug:     r.StringField(FieldPostSlug),
		Title:    r.StringField(FieldPostTitle),
		Excerpt:  r.StringField(FieldPostExcerpt),
		Body:     r.StringField(FieldPostBody),
		Author:   r.StringField(FieldPostAuthor),
		Tags:     r.StringsField(FieldPostTags),
		Status:   blog.PostStatus(r.StringField(FieldPostStatus)),
	}
	if raw := r.StringField(FieldPostPublishedAt); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			p.PublishedAt = &t
		}
	}
	return p
}
