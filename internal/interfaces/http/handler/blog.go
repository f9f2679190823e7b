package handler

import (
	"github.com/gin-gonic/gin"

	blogapp "github.com/greenmission/backend/internal/application/blog"
	"github.com/greenmission/backend/internal/interfaces/http/dto"
)

// BlogHandler handles the published blog content endpoints
type BlogHandler struct {
	BaseHandler
	blogService *blogapp.BlogService
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(blogService *blogapp.BlogService) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
	}
}

// ListPosts returns all published blog posts.
// GET /api/v1/blog
func (h *BlogHandler) ListPosts(c *gin.Context) {
	posts, err := h.blogService.ListPosts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.List(c, posts, len(posts))
}

// GetPost returns one published post by slug.
// GET /api/v1/blog/:slug
func (h *BlogHandler) GetPost(c *gin.Context) {
	var req dto.SlugRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	post, err := h.blogService.GetPostBySlug(c.Request.Context(), req.Slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, post)
}
