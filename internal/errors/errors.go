// Package errors categorizes analytics failures and maps them onto HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/wallet-analytics/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryNotFound is an unknown wallet or token id
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryInvalidInput is a malformed or missing request parameter
	CategoryInvalidInput ErrorCategory = "invalid_input"
	// CategoryPartialData is a per-asset lookup failure that callers degrade around
	CategoryPartialData ErrorCategory = "partial_data"
	// CategoryDatabase represents database errors
	CategoryDatabase ErrorCategory = "database"
	// CategoryCache represents cache errors
	CategoryCache ErrorCategory = "cache"
	// CategoryRateLimit represents rate limit errors
	CategoryRateLimit ErrorCategory = "rate_limit"
	// CategorySystem represents unexpected internal errors
	CategorySystem ErrorCategory = "system"
)

// Error codes carried in API responses
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodePartialData  = "PARTIAL_DATA"
	CodeDatabase     = "DATABASE_ERROR"
	CodeCache        = "CACHE_ERROR"
	CodeRateLimit    = "RATE_LIMIT_EXCEEDED"
	CodeInternal     = "INTERNAL_ERROR"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to the API error payload
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id interface{}) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %v", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(param string, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryInvalidInput,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidInput,
		Message:    reason,
		Details: map[string]interface{}{
			"parameter": param,
		},
	}
}

// NewPartialDataError wraps a per-asset lookup failure. These are logged by the
// engine and never returned to API callers.
func NewPartialDataError(source string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryPartialData,
		StatusCode: http.StatusOK,
		Code:       CodePartialData,
		Message:    fmt.Sprintf("partial data: %s unavailable", source),
		Cause:      cause,
		Details: map[string]interface{}{
			"source": source,
		},
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryDatabase,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeDatabase,
		Message:    fmt.Sprintf("database error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewCacheError creates a cache error
func NewCacheError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryCache,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeCache,
		Message:    fmt.Sprintf("cache error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit float64) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeRateLimit,
		Message:    "rate limit exceeded, please try again later",
		Details: map[string]interface{}{
			"limit": limit,
		},
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    message,
		Cause:      cause,
	}
}

// Categorize finds the outermost CategorizedError in err's chain. Anything
// else is reported as an internal error.
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr
	}

	var svcErr *types.ServiceError
	if stderrors.As(err, &svcErr) {
		return &CategorizedError{
			Category:   CategorySystem,
			StatusCode: http.StatusInternalServerError,
			Code:       svcErr.Code,
			Message:    svcErr.Message,
			Details:    svcErr.Details,
		}
	}

	return NewInternalError("unexpected error", err)
}

// GetHTTPStatusCode returns the HTTP status code for an error
func GetHTTPStatusCode(err error) int {
	if catErr := Categorize(err); catErr != nil {
		return catErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool {
	return hasCategory(err, CategoryNotFound)
}

// IsInvalidInput reports whether err is an InvalidInput error
func IsInvalidInput(err error) bool {
	return hasCategory(err, CategoryInvalidInput)
}

// IsUserError determines if an error is a user error (4xx)
func IsUserError(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}
	return catErr.StatusCode >= 400 && catErr.StatusCode < 500
}

func hasCategory(err error, category ErrorCategory) bool {
	var catErr *CategorizedError
	return stderrors.As(err, &catErr) && catErr.Category == category
}
