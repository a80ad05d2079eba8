package profile

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/shared/valueobject"
)

// MaxLogoSize is the largest logo accepted, in bytes
const MaxLogoSize = 2 << 20

var logoTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

var (
	ErrInvalidLogoType = shared.NewValidationError("INVALID_LOGO_TYPE", "Logo must be a PNG, JPEG, SVG or WebP image")
	ErrLogoTooLarge    = shared.NewValidationError("LOGO_TOO_LARGE", "Logo cannot exceed 2 MiB")
	ErrEmptyLogo       = shared.NewValidationError("EMPTY_LOGO", "Logo file is empty")
	ErrInvalidEmail    = shared.NewValidationError("INVALID_EMAIL", "Email must look like name@domain.tld")
)

// Profile holds the sender details a tenant prints on invoices. A tenant has
// at most one; the tenant id doubles as the profile id.
type Profile struct {
	shared.TenantAggregateRoot
	BusinessName string
	Email        string
	Address      string
	TaxID        string
	LogoURL      string
}

// New returns an empty profile for tenantID
func New(tenantID uuid.UUID) *Profile {
	p := &Profile{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	p.ID = tenantID
	return p
}

// Update replaces the text fields. Email may be empty.
func (p *Profile) Update(businessName, email, address, taxID string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		e, err := valueobject.NewEmail(email)
		if err != nil {
			return ErrInvalidEmail
		}
		email = e.String()
	}
	p.BusinessName = strings.TrimSpace(businessName)
	p.Email = email
	p.Address = strings.TrimSpace(address)
	p.TaxID = strings.TrimSpace(taxID)
	p.IncrementVersion()
	return nil
}

// SetLogo records the public URL of an uploaded logo
func (p *Profile) SetLogo(url string) {
	p.LogoURL = url
	p.IncrementVersion()
}

// DisplayName falls back to the email when no business name is set
func (p *Profile) DisplayName() string {
	if p.BusinessName != "" {
		return p.BusinessName
	}
	return p.Email
}

// LogoObjectKey validates an upload and returns the storage key for it
func LogoObjectKey(tenantID uuid.UUID, contentType string, size int64) (string, error) {
	ext, ok := logoTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrInvalidLogoType
	}
	if size <= 0 {
		return "", ErrEmptyLogo
	}
	if size > MaxLogoSize {
		return "", ErrLogoTooLarge
	}
	return path.Join("logos", tenantID.String(), uuid.NewString()+ext), nil
}

// Repository persists profiles
type Repository interface {
	// FindByTenant returns shared.ErrNotFound when the tenant saved nothing yet
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}
