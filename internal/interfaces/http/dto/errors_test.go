package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{string(shared.KindNotFound), http.StatusNotFound},
		{string(shared.KindConflict), http.StatusConflict},
		{string(shared.KindValidation), http.StatusBadRequest},
		{string(shared.KindUnauthenticated), http.StatusUnauthorized},
		{string(shared.KindInvalidState), http.StatusUnprocessableEntity},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeDocsDisabled, http.StatusNotFound},
		{"CUSTOM_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	t.Run("rounds pages up", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]int{1}, 41, 2, 20)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 3, resp.Meta.TotalPages)
		assert.Equal(t, 2, resp.Meta.Page)
	})

	t.Run("zero page size", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta(nil, 5, 1, 0)
		assert.Equal(t, 0, resp.Meta.TotalPages)
	})
}

func TestErrorResponse_JSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeConflict, "CLIENT_EMAIL_EXISTS", "A client with this email already exists", "req-1")
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")
	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, "CONFLICT", errInfo["code"])
	assert.Equal(t, "CLIENT_EMAIL_EXISTS", errInfo["reason"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.NotContains(t, errInfo, "details")
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{{Field: "email", Message: "Invalid email format"}})
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
}
