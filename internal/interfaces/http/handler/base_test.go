package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/auth"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"github.com/invoicer/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testRequestID = "req-test-1"

// newTestEngine returns an engine whose requests run as tenantID, simulating
// the JWT middleware without tokens. uuid.Nil leaves the request anonymous.
func newTestEngine(tenantID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.RequestIDKey, testRequestID)
		if tenantID != uuid.Nil {
			c.Set(middleware.JWTPrincipalKey, &auth.Principal{TenantID: tenantID, Subject: "user-1"})
			c.Set(middleware.JWTTenantIDKey, tenantID.String())
		}
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetTenantID(t *testing.T) {
	t.Run("from principal", func(t *testing.T) {
		tenantID := uuid.New()
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(middleware.JWTPrincipalKey, &auth.Principal{TenantID: tenantID})

		got, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, tenantID, got)
	})

	t.Run("missing principal", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		_, err := getTenantID(c)
		assert.Equal(t, shared.KindUnauthenticated, shared.KindOf(err))
	})
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Success(c, map[string]string{"name": "Acme"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Acme", resp.Data.(map[string]any)["name"])
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)

	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{
			name:       "not found",
			err:        shared.NewNotFoundError("CLIENT_NOT_FOUND", "Client not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
			wantReason: "CLIENT_NOT_FOUND",
		},
		{
			name:       "wrapped conflict",
			err:        fmt.Errorf("save: %w", shared.ErrStaleVersion),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeConflict,
			wantReason: "CONCURRENCY_CONFLICT",
		},
		{
			name:       "validation",
			err:        shared.NewValidationError("INVALID_HOURS", "Hours must be positive"),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantReason: "INVALID_HOURS",
		},
		{
			name:       "invalid state",
			err:        shared.NewInvalidStateError("INVOICE_PAID", "Paid invoices are read-only"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInvalidState,
			wantReason: "INVOICE_PAID",
		},
		{
			name:       "unauthenticated",
			err:        errMissingTenant,
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrCodeUnauthenticated,
			wantReason: "MISSING_TENANT",
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, testRequestID)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantReason, resp.Error.Reason)
			assert.Equal(t, testRequestID, resp.Error.RequestID)
			assert.NotContains(t, resp.Error.Message, "pq:")
			if tt.wantStatus == http.StatusInternalServerError {
				require.Len(t, c.Errors, 1)
				assert.ErrorIs(t, c.Errors.Last().Err, tt.err)
			} else {
				assert.Empty(t, c.Errors)
			}
		})
	}
}

func TestBaseHandlerHandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}

func TestResolveScopeRejectsBadID(t *testing.T) {
	r := newTestEngine(uuid.New())
	r.GET("/things/:id", func(c *gin.Context) {
		if _, _, ok := resolveScope(&BaseHandler{}, c); ok {
			c.Status(http.StatusOK)
		}
	})

	w := doJSON(r, http.MethodGet, "/things/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Reason)
}
