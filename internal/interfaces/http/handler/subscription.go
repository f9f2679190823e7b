package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/greenmission/backend/internal/application/billing"
	"github.com/greenmission/backend/internal/domain/directory"
	"github.com/greenmission/backend/internal/interfaces/http/dto"
	"github.com/greenmission/backend/internal/interfaces/http/middleware"
)

// SubscriptionHandler handles membership billing endpoints
type SubscriptionHandler struct {
	BaseHandler
	subscriptionService *billingapp.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService *billingapp.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) requireOrg(c *gin.Context) (string, bool) {
	orgID := middleware.GetOrgID(c)
	if orgID == "" {
		h.Forbidden(c, "An active organization is required to manage billing")
		return "", false
	}
	return orgID, true
}

// Subscribe starts a paid membership for the caller's business.
// POST /api/v1/subscription
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orgID, ok := h.requireOrg(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), billingapp.SubscribeInput{
		ClerkOrgID:    orgID,
		Tier:          directory.MembershipTier(req.Tier),
		Email:         req.Email,
		PaymentMethod: req.PaymentMethod,
		TrialDays:     req.TrialDays,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sub)
}

// ChangePlan moves the caller's subscription to a different tier.
// PUT /api/v1/subscription
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orgID, ok := h.requireOrg(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.ChangePlan(c.Request.Context(), orgID, directory.MembershipTier(req.Tier))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sub)
}

// Cancel ends the caller's subscription at the end of the billing period.
// DELETE /api/v1/subscription
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	var req dto.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	orgID, ok := h.requireOrg(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Cancel(c.Request.Context(), orgID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sub)
}
