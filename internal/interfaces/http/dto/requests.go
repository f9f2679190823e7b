package dto

// MemberListQuery narrows the public directory listing
type MemberListQuery struct {
	Category string `form:"category"`
	City     string `form:"city"`
	Search   string `form:"search"`
	Featured bool   `form:"featured"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SlugRequest represents a request with a slug path parameter
type SlugRequest struct {
	Slug string `uri:"slug" binding:"required,slug"`
}

// CreateBusinessRequest is the member registration payload
type CreateBusinessRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Description string   `json:"description" binding:"max=2000"`
	Categories  []string `json:"categories" binding:"max=10"`
	Email       string   `json:"email" binding:"omitempty,email"`
	Phone       string   `json:"phone" binding:"max=40"`
	Website     string   `json:"website" binding:"omitempty,url"`
	City        string   `json:"city" binding:"max=100"`
	State       string   `json:"state" binding:"max=100"`
	Country     string   `json:"country" binding:"max=100"`
}

// UpdateBusinessRequest carries editable profile fields. Pointer fields
// distinguish "clear" from "leave unchanged".
type UpdateBusinessRequest struct {
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	Categories  *[]string `json:"categories" binding:"omitempty,max=10"`
	Email       *string   `json:"email" binding:"omitempty,email"`
	Phone       *string   `json:"phone" binding:"omitempty,max=40"`
	Website     *string   `json:"website" binding:"omitempty,url"`
	City        *string   `json:"city" binding:"omitempty,max=100"`
	State       *string   `json:"state" binding:"omitempty,max=100"`
	Country     *string   `json:"country" binding:"omitempty,max=100"`
}

// SubscribeRequest starts a membership subscription
type SubscribeRequest struct {
	Tier          string `json:"tier" binding:"required,oneof=basic premium enterprise"`
	Email         string `json:"email" binding:"omitempty,email"`
	PaymentMethod string `json:"payment_method"`
	TrialDays     int    `json:"trial_days" binding:"omitempty,min=0,max=90"`
}

// ChangePlanRequest moves a subscription to a different tier
type ChangePlanRequest struct {
	Tier string `json:"tier" binding:"required,oneof=basic premium enterprise"`
}

// CancelSubscriptionRequest ends a subscription
type CancelSubscriptionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}
