package handler

import (
	"github.com/gin-gonic/gin"

	directoryapp "github.com/greenmission/backend/internal/application/directory"
)

// CategoryHandler handles the directory category endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *directoryapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *directoryapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ListCategories returns the active directory categories.
// GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.List(c, categories, len(categories))
}
