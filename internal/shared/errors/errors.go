// Package errors provides application-level error types and utilities.
// Every error that crosses the use-case boundary is an AppError carrying a type,
// a machine-readable code, an HTTP status and, for denials, a suggested redirect.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation_error"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeStateConflict     ErrorType = "state_conflict"
	ErrorTypeUnauthorized      ErrorType = "unauthorized"
	ErrorTypeForbidden         ErrorType = "forbidden"
	ErrorTypeInternal          ErrorType = "internal_error"
	ErrorTypeGateway           ErrorType = "gateway_error"
	ErrorTypeSignature         ErrorType = "signature_error"
	ErrorTypeLimitExceeded     ErrorType = "limit_exceeded"
	ErrorTypeEntitlementDenied ErrorType = "entitlement_denied"
	ErrorTypeRateLimited       ErrorType = "rate_limited"
)

// Machine-readable denial codes returned to clients.
const (
	CodeNoSubscription        = "NO_SUBSCRIPTION"
	CodeTrialExpired          = "TRIAL_EXPIRED"
	CodeSubscriptionPastDue   = "SUBSCRIPTION_PAST_DUE"
	CodeSubscriptionInactive  = "SUBSCRIPTION_INACTIVE"
	CodeSubscriptionSuspended = "SUBSCRIPTION_SUSPENDED"
	CodeEmployeeLimitReached  = "EMPLOYEE_LIMIT_REACHED"
	CodeFeatureNotAvailable   = "FEATURE_NOT_AVAILABLE"
	CodeInvalidSignature      = "INVALID_SIGNATURE"
	CodeGatewayUnavailable    = "GATEWAY_UNAVAILABLE"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeSeatLimitExceeded     = "SEAT_LIMIT_EXCEEDED"
)

// Suggested client destinations for denials.
const (
	RedirectPlans    = "/billing/plans"
	RedirectCheckout = "/billing/checkout"
	RedirectBilling  = "/billing"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType `json:"type"`
	Code     string    `json:"code,omitempty"`
	Message  string    `json:"message"`
	Status   int       `json:"-"`
	Details  string    `json:"details,omitempty"`
	Redirect string    `json:"redirect,omitempty"`
	// Retryable marks errors the caller may retry unchanged.
	Retryable bool  `json:"-"`
	cause     error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func firstDetail(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    CodeValidationFailed,
		Message: message,
		Status:  http.StatusBadRequest,
		Details: firstDetail(details),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
		Details: firstDetail(details),
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Details: firstDetail(details),
	}
}

// NewStateConflictError reports a transition that is invalid for the current status.
func NewStateConflictError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeStateConflict,
		Code:    CodeInvalidTransition,
		Message: message,
		Status:  http.StatusConflict,
		Details: firstDetail(details),
	}
}

// NewGatewayError reports an unreachable or rejecting payment provider.
func NewGatewayError(message string, details ...string) *AppError {
	return &AppError{
		Type:      ErrorTypeGateway,
		Code:      CodeGatewayUnavailable,
		Message:   message,
		Status:    http.StatusBadGateway,
		Details:   firstDetail(details),
		Retryable: true,
	}
}

// NewSignatureError reports a failed signature verification.
func NewSignatureError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeSignature,
		Code:    CodeInvalidSignature,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewLimitExceededError reports a seat or feature ceiling and points at the plan list.
func NewLimitExceededError(message string, details ...string) *AppError {
	return &AppError{
		Type:     ErrorTypeLimitExceeded,
		Code:     CodeSeatLimitExceeded,
		Message:  message,
		Status:   http.StatusForbidden,
		Details:  firstDetail(details),
		Redirect: RedirectPlans,
	}
}

// NewEntitlementDenied creates a guard denial with a machine code and redirect.
func NewEntitlementDenied(code, message, redirect string, status int) *AppError {
	return &AppError{
		Type:     ErrorTypeEntitlementDenied,
		Code:     code,
		Message:  message,
		Status:   status,
		Redirect: redirect,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Details: firstDetail(details),
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Details: firstDetail(details),
	}
}

// NewRateLimitError tells the caller to slow down.
func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeRateLimited,
		Message:   message,
		Status:    http.StatusTooManyRequests,
		Retryable: true,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Details: firstDetail(details),
	}
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

func IsNotFoundError(err error) bool      { return isType(err, ErrorTypeNotFound) }
func IsValidationError(err error) bool    { return isType(err, ErrorTypeValidation) }
func IsGatewayError(err error) bool       { return isType(err, ErrorTypeGateway) }
func IsSignatureError(err error) bool     { return isType(err, ErrorTypeSignature) }
func IsStateConflictError(err error) bool { return isType(err, ErrorTypeStateConflict) }
func IsLimitExceededError(err error) bool { return isType(err, ErrorTypeLimitExceeded) }

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	return strings.Contains(errStr, "unique constraint")
}
