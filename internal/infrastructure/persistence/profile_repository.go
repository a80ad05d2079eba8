package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/profile"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfileRepository implements profile.Repository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByTenant loads the business profile of a tenant
func (r *GormProfileRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*profile.Profile, error) {
	var model models.BusinessProfileModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the profile row of the tenant
func (r *GormProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	model := models.BusinessProfileModelFromDomain(p)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name", "email", "address", "tax_id", "logo_url", "version", "updated_at",
		}),
	}).Create(model).Error; err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

var _ profile.Repository = (*GormProfileRepository)(nil)
