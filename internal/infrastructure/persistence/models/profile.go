package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/profile"
	"github.com/invoicer/backend/internal/domain/shared"
)

// BusinessProfileModel is the row of the business_profiles table. The tenant
// id is the key.
type BusinessProfileModel struct {
	TenantID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessName string    `gorm:"type:varchar(200);not null;default:''"`
	Email        string    `gorm:"type:varchar(320);not null;default:''"`
	Address      string    `gorm:"type:varchar(500);not null;default:''"`
	TaxID        string    `gorm:"type:varchar(100);not null;default:''"`
	LogoURL      string    `gorm:"type:varchar(1000);not null;default:''"`
	Version      int       `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BusinessProfileModel) TableName() string {
	return "business_profiles"
}

// ToDomain converts the row to a Profile
func (m *BusinessProfileModel) ToDomain() *profile.Profile {
	return &profile.Profile{
		TenantAggregateRoot: shared.RestoreTenantAggregateRoot(m.TenantID, m.TenantID, m.Version, m.CreatedAt, m.UpdatedAt),
		BusinessName:        m.BusinessName,
		Email:               m.Email,
		Address:             m.Address,
		TaxID:               m.TaxID,
		LogoURL:             m.LogoURL,
	}
}

// BusinessProfileModelFromDomain builds the row for p
func BusinessProfileModelFromDomain(p *profile.Profile) *BusinessProfileModel {
	return &BusinessProfileModel{
		TenantID:     p.TenantID,
		BusinessName: p.BusinessName,
		Email:        p.Email,
		Address:      p.Address,
		TaxID:        p.TaxID,
		LogoURL:      p.LogoURL,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// All lists every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&ClientModel{},
		&InvoiceSequenceModel{},
		&InvoiceModel{},
		&InvoiceLineModel{},
		&TaskModel{},
		&BusinessProfileModel{},
	}
}
