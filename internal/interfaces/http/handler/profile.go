package handler

import (
	"github.com/gin-gonic/gin"

	membershipapp "github.com/greenmission/backend/internal/application/membership"
	"github.com/greenmission/backend/internal/interfaces/http/middleware"
)

// ProfileHandler handles the authenticated member profile endpoints
type ProfileHandler struct {
	BaseHandler
	profileService *membershipapp.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *membershipapp.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile returns the caller's assembled profile: Clerk identity,
// organization, business record, and billing status.
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(),
		middleware.GetUserID(c), middleware.GetOrgID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, profile)
}

// ListPlans returns the membership plan catalog.
// GET /api/v1/plans
func (h *ProfileHandler) ListPlans(c *gin.Context) {
	plans, err := h.profileService.Plans(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.List(c, plans, len(plans))
}
