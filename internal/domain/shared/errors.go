package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors built with a custom message still match the package sentinels.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound             = "NOT_FOUND"
	CodeDuplicateCharge      = "DUPLICATE_CHARGE"
	CodeConfigurationMissing = "CONFIGURATION_MISSING"
	CodeInvalidState         = "INVALID_STATE"
	CodeAlreadyPaid          = "ALREADY_PAID"
	CodeBadRequest           = "BAD_REQUEST"
	CodeValidation           = "VALIDATION_ERROR"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeAlreadyExists        = "ALREADY_EXISTS"
)

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrDuplicateCharge      = NewDomainError(CodeDuplicateCharge, "Charge already exists for this payer and period")
	ErrConfigurationMissing = NewDomainError(CodeConfigurationMissing, "Pricing configuration is missing")
	ErrInvalidState         = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrAlreadyPaid          = NewDomainError(CodeAlreadyPaid, "Record is already settled")
	ErrBadRequest           = NewDomainError(CodeBadRequest, "Bad request")
	ErrValidation           = NewDomainError(CodeValidation, "Validation failed")
	ErrConcurrencyConflict  = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrAlreadyExists        = NewDomainError(CodeAlreadyExists, "Resource already exists")
)

// IsAlreadyPaid reports whether err means the record is settled.
// AlreadyPaid is a specialisation of InvalidState, so errors.Is(err, ErrInvalidState)
// does not match it; callers that treat both alike use this helper.
func IsAlreadyPaid(err error) bool {
	return errors.Is(err, ErrAlreadyPaid)
}

// IsInvalidState reports whether err is InvalidState or one of its specialisations.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrAlreadyPaid)
}
