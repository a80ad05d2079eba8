package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/client"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements client.Repository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForTenant finds a client by ID within a tenant
func (r *GormClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, client.ErrClientNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several clients of a tenant
func (r *GormClientRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]client.Client, error) {
	if len(ids) == 0 {
		return []client.Client{}, nil
	}
	var rows []models.ClientModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return clientsToDomain(rows), nil
}

// FindAllForTenant lists clients page by page
func (r *GormClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]client.Client, error) {
	var rows []models.ClientModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ClientModel{}).Scopes(forTenant(tenantID)), filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, ClientSortFields, "name")).
		Scopes(paginate(filter.Page, filter.PageSize))
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return clientsToDomain(rows), nil
}

// CountForTenant counts clients matching filter, ignoring pagination
func (r *GormClientRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ClientModel{}).Scopes(forTenant(tenantID)), filter).
		Count(&count).Error
	return count, err
}

// ExistsActiveByEmail reports whether an active client other than excludeID uses email
func (r *GormClientRepository) ExistsActiveByEmail(ctx context.Context, tenantID uuid.UUID, email string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Scopes(forTenant(tenantID)).
		Where("email = ? AND status = ?", client.NormalizeEmail(email), client.StatusActive)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new client or updates a loaded one under its version
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	model := models.ClientModelFromDomain(c)
	db := r.db.WithContext(ctx)

	if c.LoadedVersion() == 0 {
		if err := db.Create(model).Error; err != nil {
			return translateClientError(err)
		}
		c.MarkPersisted()
		return nil
	}

	result := db.Model(&models.ClientModel{}).
		Scopes(forTenant(c.TenantID)).
		Where("id = ? AND version = ?", c.ID, c.LoadedVersion()).
		Updates(map[string]any{
			"name":        model.Name,
			"email":       model.Email,
			"address":     model.Address,
			"website":     model.Website,
			"hourly_rate": model.HourlyRate,
			"status":      model.Status,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return translateClientError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrStaleVersion
	}
	c.MarkPersisted()
	return nil
}

// DeleteForTenant hard-deletes a client
func (r *GormClientRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		Delete(&models.ClientModel{})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return client.ErrClientInUse
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return client.ErrClientNotFound
	}
	return nil
}

// CountTasksByClient counts tasks that reference clientID
func (r *GormClientRepository) CountTasksByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskModel{}).
		Scopes(forTenant(tenantID)).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}

// CountInvoicesByClient counts invoices that reference clientID
func (r *GormClientRepository) CountInvoicesByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Scopes(forTenant(tenantID)).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}

func (r *GormClientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR email LIKE ?)", like, like)
	}
	return query
}

func translateClientError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return client.ErrEmailExists
	}
	return err
}

func clientsToDomain(rows []models.ClientModel) []client.Client {
	out := make([]client.Client, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var (
	_ client.Repository   = (*GormClientRepository)(nil)
	_ client.UsageChecker = (*GormClientRepository)(nil)
)
