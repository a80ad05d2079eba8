package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	profileapp "github.com/invoicer/backend/internal/application/profile"
	"github.com/invoicer/backend/internal/domain/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupProfileRouter(tenantID uuid.UUID) (*gin.Engine, *MockProfileService) {
	profiles := new(MockProfileService)
	h := NewProfileHandler(profiles)

	r := newTestEngine(tenantID)
	r.GET("/profile", h.Get)
	r.PUT("/profile", h.Update)
	r.POST("/profile/logo", h.UploadLogo)
	return r, profiles
}

func multipartLogo(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestProfileHandler_GetAndUpdate(t *testing.T) {
	tenantID := uuid.New()
	r, profiles := setupProfileRouter(tenantID)
	profiles.On("Get", mock.Anything, tenantID).Return(&profileapp.ProfileResponse{BusinessName: "Studio Nine"}, nil)
	profiles.On("Update", mock.Anything, tenantID, profileapp.UpdateProfileRequest{
		BusinessName: "Studio Nine Ltd", Email: "hello@studio9.test",
	}).Return(&profileapp.ProfileResponse{BusinessName: "Studio Nine Ltd", Email: "hello@studio9.test"}, nil)

	w := doJSON(r, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Studio Nine", decode(t, w).Data.(map[string]any)["business_name"])

	w = doJSON(r, http.MethodPut, "/profile", map[string]string{
		"business_name": "Studio Nine Ltd", "email": "hello@studio9.test",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	profiles.AssertExpectations(t)

	t.Run("bad email", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/profile", map[string]string{"email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProfileHandler_UploadLogo(t *testing.T) {
	tenantID := uuid.New()
	png := []byte("\x89PNG\r\n\x1a\nfake-image")

	t.Run("uploaded", func(t *testing.T) {
		r, profiles := setupProfileRouter(tenantID)
		profiles.On("UploadLogo", mock.Anything, tenantID, "logo.png", "image/png", png, int64(len(png))).
			Return(&profileapp.ProfileResponse{LogoURL: "https://cdn.invoicer.test/logos/x.png"}, nil)

		body, contentType := multipartLogo(t, LogoFormField, "logo.png", "image/png", png)
		req := httptest.NewRequest(http.MethodPost, "/profile/logo", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://cdn.invoicer.test/logos/x.png", decode(t, w).Data.(map[string]any)["logo_url"])
		profiles.AssertExpectations(t)
	})

	t.Run("wrong field name", func(t *testing.T) {
		r, profiles := setupProfileRouter(tenantID)

		body, contentType := multipartLogo(t, "image", "logo.png", "image/png", png)
		req := httptest.NewRequest(http.MethodPost, "/profile/logo", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_LOGO", decode(t, w).Error.Reason)
		profiles.AssertNotCalled(t, "UploadLogo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected type", func(t *testing.T) {
		r, profiles := setupProfileRouter(tenantID)
		profiles.On("UploadLogo", mock.Anything, tenantID, "logo.gif", "image/gif", mock.Anything, mock.Anything).
			Return(nil, profile.ErrInvalidLogoType)

		body, contentType := multipartLogo(t, LogoFormField, "logo.gif", "image/gif", []byte("GIF89a"))
		req := httptest.NewRequest(http.MethodPost, "/profile/logo", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_LOGO_TYPE", decode(t, w).Error.Reason)
	})
}
