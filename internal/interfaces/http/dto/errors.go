package dto

import "net/http"

// Error code constants, format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeValidation   = "ERR_VALIDATION"
)

// Business rule error codes
const (
	ErrCodeInvalidState   = "ERR_INVALID_STATE"
	ErrCodeBusinessRule   = "ERR_BUSINESS_RULE"
	ErrCodeUpstream       = "ERR_UPSTREAM"
	ErrCodeNoSubscription = "ERR_NO_SUBSCRIPTION"
)

// Webhook error codes
const (
	ErrCodeWebhookSignature = "ERR_WEBHOOK_SIGNATURE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:   http.StatusUnprocessableEntity,
	ErrCodeUpstream:       http.StatusBadGateway,
	ErrCodeNoSubscription: http.StatusUnprocessableEntity,

	ErrCodeWebhookSignature: http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code, defaulting
// to 500 for codes without a mapping.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to the API's standardized
// codes.
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"ALREADY_EXISTS":            ErrCodeAlreadyExists,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"INVALID_STATE":             ErrCodeInvalidState,
	"UNAUTHORIZED":              ErrCodeUnauthorized,
	"FORBIDDEN":                 ErrCodeForbidden,
	"UPSTREAM_ERROR":            ErrCodeUpstream,
	"INVALID_SLUG":              ErrCodeInvalidInput,
	"INVALID_NAME":              ErrCodeInvalidInput,
	"UNKNOWN_TIER":              ErrCodeInvalidInput,
	"NO_SUBSCRIPTION":           ErrCodeNoSubscription,
	"MISSING_RECORD_ID":         ErrCodeInvalidState,
	"WEBHOOK_HEADERS_MISSING":   ErrCodeWebhookSignature,
	"WEBHOOK_TIMESTAMP_INVALID": ErrCodeWebhookSignature,
	"WEBHOOK_TIMESTAMP_EXPIRED": ErrCodeWebhookSignature,
	"WEBHOOK_SIGNATURE_INVALID": ErrCodeWebhookSignature,
	"WEBHOOK_PAYLOAD_INVALID":   ErrCodeBadRequest,
}

// NormalizeErrorCode converts a domain error code to the standardized
// format. Unknown codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
