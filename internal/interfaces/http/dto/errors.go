package dto

import (
	"net/http"

	"github.com/invoicer/backend/internal/domain/shared"
)

// Error categories returned in ErrorInfo.Code
const (
	ErrCodeNotFound        = string(shared.KindNotFound)
	ErrCodeConflict        = string(shared.KindConflict)
	ErrCodeValidation      = string(shared.KindValidation)
	ErrCodeUnauthenticated = string(shared.KindUnauthenticated)
	ErrCodeInvalidState    = string(shared.KindInvalidState)

	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeDocsDisabled    = "DOCS_DISABLED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error categories to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeDocsDisabled:    http.StatusNotFound,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
