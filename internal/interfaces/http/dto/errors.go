package dto

import "net/http"

// Error codes carried in the response envelope. Domain codes pass through
// unchanged; the rest are produced by the adapter itself.
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeDuplicateCharge      = "DUPLICATE_CHARGE"
	ErrCodeConfigurationMissing = "CONFIGURATION_MISSING"
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeAlreadyPaid          = "ALREADY_PAID"
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	ErrCodeAlreadyExists        = "ALREADY_EXISTS"

	// ErrCodeInvalidJSON is used when the request body cannot be decoded
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeUnauthorized is used when a bearer token is missing or rejected
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeInternal hides unexpected failures from callers
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound: http.StatusNotFound,

	// Conflicts -> 409
	ErrCodeDuplicateCharge:     http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeAlreadyExists:       http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeConfigurationMissing: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeAlreadyPaid:          http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
