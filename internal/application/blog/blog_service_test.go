package blog

import (
	"context"
	"testing"
	"time"

	"github.com/greenmission/backend/internal/domain/blog"
	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = shared.FixedClock{T: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}

type fakePostStore struct {
	posts     []blog.Post
	listCalls int
	getCalls  int
}

func (f *fakePostStore) ListPublished(ctx context.Context) ([]blog.Post, error) {
	f.listCalls++
	return f.posts, nil
}

func (f *fakePostStore) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	f.getCalls++
	for i := range f.posts {
		if f.posts[i].Slug == slug {
			return &f.posts[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func newTestService(t *testing.T, store *fakePostStore) *BlogService {
	t.Helper()
	c := cache.NewMemoryCache(testClock)
	t.Cleanup(func() { _ = c.Close() })
	return NewBlogService(store, c, nil)
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()

	store := &fakePostStore{posts: []blog.Post{
		{Slug: "why-refill-stores-matter", Title: "Why Refill Stores Matter", Status: blog.PostStatusPublished},
	}}
	svc := newTestService(t, store)

	first, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	second, err := svc.ListPosts(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.listCalls)
}

func TestGetPostBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("serves repeat reads from cache", func(t *testing.T) {
		store := &fakePostStore{posts: []blog.Post{
			{Slug: "composting-basics", Title: "Composting Basics"},
		}}
		svc := newTestService(t, store)

		post, err := svc.GetPostBySlug(ctx, "composting-basics")
		require.NoError(t, err)
		assert.Equal(t, "Composting Basics", post.Title)

		_, err = svc.GetPostBySlug(ctx, "composting-basics")
		require.NoError(t, err)
		assert.Equal(t, 1, store.getCalls)
	})

	t.Run("rejects malformed slugs", func(t *testing.T) {
		store := &fakePostStore{}
		svc := newTestService(t, store)

		_, err := svc.GetPostBySlug(ctx, "Not A Slug!")

		assert.ErrorIs(t, err, directory.ErrInvalidSlug)
		assert.Equal(t, 0, store.getCalls)
	})

	t.Run("propagates not found", func(t *testing.T) {
		svc := newTestService(t, &fakePostStore{})

		_, err := svc.GetPostBySlug(ctx, "missing-post")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
