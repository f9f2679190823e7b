package blog

import (
	"context"

	"github.com/greenmission/backend/internal/domain/blog"
	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// PostStore is the persistence the blog needs. *airtable.BlogStore
// satisfies it.
type PostStore interface {
	ListPublished(ctx context.Context) ([]blog.Post, error)
	GetBySlug(ctx context.Context, slug string) (*blog.Post, error)
}

// BlogService serves published blog content. Posts change rarely, so both
// the listing and individual posts sit at the long cache tier.
type BlogService struct {
	store  PostStore
	cache  cache.Cache
	logger *zap.Logger
}

// NewBlogService creates a new BlogService
func NewBlogService(store PostStore, c cache.Cache, logger *zap.Logger) *BlogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogService{
		store:  store,
		cache:  c,
		logger: logger,
	}
}

// ListPosts returns all published posts, newest first.
func (s *BlogService) ListPosts(ctx context.Context) ([]blog.Post, error) {
	key := cache.Key(cache.ServiceAirtable, "blog-posts")
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLLong, func(ctx context.Context) ([]blog.Post, error) {
		return s.store.ListPublished(ctx)
	})
}

// GetPostBySlug returns one published post.
func (s *BlogService) GetPostBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	if !directory.IsValidSlug(slug) {
		return nil, directory.ErrInvalidSlug
	}
	key := cache.Key(cache.ServiceAirtable, "blog-post", slug)
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLLong, func(ctx context.Context) (*blog.Post, error) {
		return s.store.GetBySlug(ctx, slug)
	})
}
