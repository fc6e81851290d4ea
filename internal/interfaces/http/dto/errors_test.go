package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", "NOT_FOUND", http.StatusNotFound},
		{"account not found", "ACCOUNT_NOT_FOUND", http.StatusNotFound},
		{"closed period is forbidden", "PERIOD_CLOSED", http.StatusForbidden},
		{"optimistic lock failure is a conflict", "CONCURRENT_MODIFICATION", http.StatusConflict},
		{"duplicate code is a conflict", "DUPLICATE_CODE", http.StatusConflict},
		{"unbalanced entry is unprocessable", "UNBALANCED_ENTRY", http.StatusUnprocessableEntity},
		{"state machine violation is unprocessable", "INVALID_STATE_TRANSITION", http.StatusUnprocessableEntity},
		{"close ordering violation is unprocessable", "PRIOR_PERIOD_OPEN", http.StatusUnprocessableEntity},
		{"drafts blocking close is unprocessable", "OUTSTANDING_DRAFT_ENTRIES", http.StatusUnprocessableEntity},
		{"bad input", "INVALID_LINE", http.StatusBadRequest},
		{"validation", ErrCodeValidation, http.StatusBadRequest},
		{"unknown code falls back to 500", "SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Entry does not exist", "req-123")
	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Entry does not exist", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{{Field: "code", Message: "This field is required"}}
	resp := NewValidationErrorResponse("Request validation failed", "req-123", details)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "code", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 41, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestListRequestNormalize(t *testing.T) {
	var req ListRequest
	req.Normalize()
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)

	req = ListRequest{Page: 3, PageSize: 50}
	req.Normalize()
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 50, req.PageSize)
}
