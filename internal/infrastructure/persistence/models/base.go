// Package models holds the GORM row types and their mapping to the domain.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
)

// TenantAggregateModel carries the columns every tenant aggregate has
type TenantAggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainTenantAggregateRoot copies identity, tenant and version from a
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(a shared.TenantAggregateRoot) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.Version = a.Version
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}

// ToDomainRoot rebuilds the aggregate root, remembering the loaded version
func (m *TenantAggregateModel) ToDomainRoot() shared.TenantAggregateRoot {
	return shared.RestoreTenantAggregateRoot(m.ID, m.TenantID, m.Version, m.CreatedAt, m.UpdatedAt)
}
