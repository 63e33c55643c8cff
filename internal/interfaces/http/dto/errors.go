package dto

import (
	"net/http"
	"strings"
)

// Error code constants for failures raised at the HTTP layer itself.
// Domain errors keep their own codes and are mapped to status codes below.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// The table covers both the ERR_* codes above and the codes carried by
// domain errors and transition rejections.
var ErrorCodeHTTPStatus = map[string]int{
	// HTTP layer errors
	ErrCodeUnknown:      http.StatusInternalServerError,
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Shared domain errors
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"FORBIDDEN":            http.StatusForbidden,
	"MISSING_CONTEXT":      http.StatusUnauthorized,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Lifecycle rejections
	"INVALID_TRANSITION":    http.StatusConflict,
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"SIGNING_REGRESSION":    http.StatusConflict,
	"STEP_NOT_FOUND":        http.StatusNotFound,
	"STEP_ALREADY_RESOLVED": http.StatusConflict,
	"MISSING_END_DATE":      http.StatusUnprocessableEntity,

	// Renewal workflow
	"OPEN_RENEWAL_EXISTS": http.StatusConflict,
	"RENEWAL_CLOSED":      http.StatusUnprocessableEntity,
	"NO_RENEWAL_REQUEST":  http.StatusNotFound,

	// Documents
	"UNSUPPORTED_DOCUMENT_TYPE": http.StatusBadRequest,
	"NO_DOCUMENT":               http.StatusNotFound,
	"STORAGE_UNAVAILABLE":       http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Codes absent from the table fall back on prefix classification:
// INVALID_*, NO_*, DUPLICATE_* and MISSING_* are treated as client
// input problems, everything else as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	for _, prefix := range []string{"INVALID_", "NO_", "DUPLICATE_", "MISSING_"} {
		if strings.HasPrefix(code, prefix) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
