package blog

import "time"

// PostStatus represents a blog post's publication state
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post is the local mirror of a blog-post record. Airtable owns the record;
// this struct is a cached copy with a freshness bound.
type Post struct {
	RecordID    string     `json:"record_id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Status      PostStatus `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// IsPublished reports whether the post should be publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
