package profile

import (
	"time"

	"github.com/invoicer/backend/internal/domain/profile"
)

// UpdateProfileRequest replaces the business details of a tenant
type UpdateProfileRequest struct {
	BusinessName string `json:"business_name" binding:"max=200"`
	Email        string `json:"email" binding:"omitempty,email,max=320"`
	Address      string `json:"address" binding:"max=500"`
	TaxID        string `json:"tax_id" binding:"max=100"`
}

// ProfileResponse represents the business profile in API responses
type ProfileResponse struct {
	BusinessName string     `json:"business_name"`
	Email        string     `json:"email"`
	Address      string     `json:"address"`
	TaxID        string     `json:"tax_id"`
	LogoURL      string     `json:"logo_url"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// ToProfileResponse converts a domain Profile. A profile that was never
// saved has no UpdatedAt.
func ToProfileResponse(p *profile.Profile) ProfileResponse {
	resp := ProfileResponse{
		BusinessName: p.BusinessName,
		Email:        p.Email,
		Address:      p.Address,
		TaxID:        p.TaxID,
		LogoURL:      p.LogoURL,
	}
	if p.LoadedVersion() > 0 {
		updated := p.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
