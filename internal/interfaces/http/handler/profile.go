package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	profileapp "github.com/invoicer/backend/internal/application/profile"
	"github.com/invoicer/backend/internal/domain/shared"
)

// LogoFormField is the multipart field carrying the logo file
const LogoFormField = "logo"

// ProfileService is the profile use-case surface the handler needs
type ProfileService interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*profileapp.ProfileResponse, error)
	Update(ctx context.Context, tenantID uuid.UUID, req profileapp.UpdateProfileRequest) (*profileapp.ProfileResponse, error)
	UploadLogo(ctx context.Context, tenantID uuid.UUID, filename, contentType string, r io.Reader, size int64) (*profileapp.ProfileResponse, error)
}

// ProfileHandler handles the business profile endpoints
type ProfileHandler struct {
	BaseHandler
	profiles ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /profile
//
// @ID           getProfile
// @Summary      Get business profile
// @Description  The tenant's business details printed on invoices
// @Tags         profile
// @Produce      json
// @Success      200 {object} dto.Response{data=profileapp.ProfileResponse}
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	p, err := h.profiles.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Update handles PUT /profile
//
// @ID           updateProfile
// @Summary      Update business profile
// @Description  Replace the tenant's business details
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body profileapp.UpdateProfileRequest true "Business details"
// @Success      200 {object} dto.Response{data=profileapp.ProfileResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req profileapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	p, err := h.profiles.Update(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// UploadLogo handles POST /profile/logo as multipart/form-data
//
// @ID           uploadLogo
// @Summary      Upload logo
// @Description  Store a PNG, JPEG, SVG or WebP logo for invoices
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        logo formData file true "Logo image"
// @Success      200 {object} dto.Response{data=profileapp.ProfileResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /profile/logo [post]
func (h *ProfileHandler) UploadLogo(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	header, err := c.FormFile(LogoFormField)
	if err != nil {
		h.HandleError(c, shared.NewValidationError("MISSING_LOGO", "Form field \"logo\" must carry an image file"))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	p, err := h.profiles.UploadLogo(c.Request.Context(), tenantID,
		header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
