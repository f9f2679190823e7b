package directory

import (
	"context"

	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// CategoryStore lists directory categories. *airtable.CategoryStore
// satisfies it.
type CategoryStore interface {
	ListActive(ctx context.Context) ([]directory.Category, error)
}

// CategoryService serves the directory's category taxonomy. Categories
// change rarely, so the listing sits in the cache at the longest tier.
type CategoryService struct {
	store  CategoryStore
	cache  cache.Cache
	logger *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(store CategoryStore, c cache.Cache, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{store: store, cache: c, logger: logger}
}

// ListCategories returns the active directory categories.
func (s *CategoryService) ListCategories(ctx context.Context) ([]directory.Category, error) {
	key := cache.Key(cache.ServiceAirtable, "categories")
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLVeryLong, func(ctx context.Context) ([]directory.Category, error) {
		return s.store.ListActive(ctx)
	})
}
