package handler

import (
	"github.com/gin-gonic/gin"

	directoryapp "github.com/greenmission/backend/internal/application/directory"
	"github.com/greenmission/backend/internal/infrastructure/airtable"
	"github.com/greenmission/backend/internal/interfaces/http/dto"
	"github.com/greenmission/backend/internal/interfaces/http/middleware"
)

// MemberHandler handles the public business directory endpoints
type MemberHandler struct {
	BaseHandler
	memberService *directoryapp.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService *directoryapp.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// ListMembers returns directory members matching the query filters.
// GET /api/v1/members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	var query dto.MemberListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	members, err := h.memberService.ListMembers(c.Request.Context(), airtable.MemberFilter{
		Category:     query.Category,
		City:         query.City,
		Search:       query.Search,
		FeaturedOnly: query.Featured,
		MaxRecords:   query.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.List(c, members, len(members))
}

// GetMember returns one member's public profile.
// GET /api/v1/members/:slug
func (h *MemberHandler) GetMember(c *gin.Context) {
	var req dto.SlugRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.GetMemberBySlug(c.Request.Context(), req.Slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, member)
}

// FeaturedMembers returns the businesses highlighted on the home page.
// GET /api/v1/members/featured
func (h *MemberHandler) FeaturedMembers(c *gin.Context) {
	members, err := h.memberService.FeaturedMembers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.List(c, members, len(members))
}

// CreateMember registers the caller's organization as a member business.
// POST /api/v1/members
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req dto.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orgID := middleware.GetOrgID(c)
	if orgID == "" {
		h.Forbidden(c, "An active organization is required to register a business")
		return
	}

	business, err := h.memberService.CreateBusiness(c.Request.Context(), directoryapp.CreateBusinessInput{
		Name:        req.Name,
		Description: req.Description,
		Categories:  req.Categories,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		ClerkOrgID:  orgID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, business)
}

// UpdateMember edits the caller's own business profile.
// PATCH /api/v1/members/me
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	var req dto.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orgID := middleware.GetOrgID(c)
	if orgID == "" {
		h.Forbidden(c, "An active organization is required to edit a business")
		return
	}

	business, err := h.memberService.GetMemberByClerkOrgID(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Description != nil {
		business.Description = *req.Description
	}
	if req.Categories != nil {
		business.Categories = *req.Categories
	}
	if req.Email != nil {
		business.Email = *req.Email
	}
	if req.Phone != nil {
		business.Phone = *req.Phone
	}
	if req.Website != nil {
		business.Website = *req.Website
	}
	if req.City != nil {
		business.City = *req.City
	}
	if req.State != nil {
		business.State = *req.State
	}
	if req.Country != nil {
		business.Country = *req.Country
	}

	if err := h.memberService.UpdateBusiness(c.Request.Context(), business); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, business)
}
