package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"NOT_FOUND", http.StatusNotFound},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_TRANSITION", http.StatusConflict},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"OPEN_RENEWAL_EXISTS", http.StatusConflict},
		{"STORAGE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"MISSING_CONTEXT", http.StatusUnauthorized},
		// Prefix fallbacks
		{"INVALID_TITLE", http.StatusBadRequest},
		{"NO_APPROVERS", http.StatusBadRequest},
		{"DUPLICATE_APPROVER", http.StatusBadRequest},
		{"MISSING_END_DATE", http.StatusUnprocessableEntity},
		// Unknown code
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Contract not found", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Contract not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "title", Message: "title is required"},
	}
	resp := NewValidationErrorResponse("Request validation failed", "req-456", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 41, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
