package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByIDForTenant loads an invoice with its lines
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists invoices with their lines, newest number first by default
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]invoice.Invoice, error) {
	var rows []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(forTenant(tenantID)), filter).
		Preload("Lines", preloadLines).
		Order(orderClause(filter.OrderBy, filter.OrderDir, InvoiceSortFields, "sequence")).
		Scopes(paginate(filter.Page, filter.PageSize))
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]invoice.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CountForTenant counts invoices matching filter
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(forTenant(tenantID)), filter).
		Count(&count).Error
	return count, err
}

type statusTotalsRow struct {
	Status invoice.Status
	Count  int64
	Total  decimal.NullDecimal
}

// TotalsByStatus sums invoice totals per status. Statuses without invoices
// are absent from the map.
func (r *GormInvoiceRepository) TotalsByStatus(ctx context.Context, tenantID uuid.UUID) (map[invoice.Status]invoice.StatusTotals, error) {
	var rows []statusTotalsRow
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("status, COUNT(*) AS count, SUM(total) AS total").
		Scopes(forTenant(tenantID)).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[invoice.Status]invoice.StatusTotals, len(rows))
	for _, row := range rows {
		out[row.Status] = invoice.StatusTotals{Count: row.Count, Total: row.Total.Decimal}
	}
	return out, nil
}

// Create allocates the next number of the tenant, stores the invoice with its
// lines and claims every referenced task. A task claimed by someone else
// rolls the whole transaction back.
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextInvoiceSequence(tx, inv.TenantID)
		if err != nil {
			return err
		}
		inv.AssignNumber(seq)

		model := models.InvoiceModelFromDomain(inv)
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Lines) > 0 {
			if err := tx.Create(&model.Lines).Error; err != nil {
				return err
			}
		}

		ids := inv.TaskIDs()
		result := tx.Model(&models.TaskModel{}).
			Scopes(forTenant(inv.TenantID)).
			Where("id IN ? AND client_id = ? AND invoiced = ?", ids, inv.ClientID, false).
			Updates(map[string]any{
				"invoiced":   true,
				"invoice_id": inv.ID,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(ids)) {
			return invoice.ErrTaskAlreadyInvoiced
		}
		return nil
	})
	if err != nil {
		inv.ClearDomainEvents()
		return err
	}
	inv.MarkPersisted()
	return nil
}

// nextInvoiceSequence bumps the tenant counter and reads it back. The upsert
// holds the row lock until the transaction ends, so concurrent creators of
// one tenant are serialised and never share a value.
func nextInvoiceSequence(tx *gorm.DB, tenantID uuid.UUID) (int64, error) {
	row := models.InvoiceSequenceModel{TenantID: tenantID, LastValue: 1, UpdatedAt: time.Now().UTC()}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_value": gorm.Expr("invoice_sequences.last_value + 1"),
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return 0, err
	}

	var current models.InvoiceSequenceModel
	if err := tx.Where("tenant_id = ?", tenantID).First(&current).Error; err != nil {
		return 0, err
	}
	return current.LastValue, nil
}

// Update stores header fields and status under the loaded version. Paying an
// invoice completes its tasks in the same transaction.
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Scopes(forTenant(inv.TenantID)).
			Where("id = ? AND version = ?", inv.ID, inv.LoadedVersion()).
			Updates(map[string]any{
				"issue_date": model.IssueDate,
				"due_date":   model.DueDate,
				"tax":        model.Tax,
				"total":      model.Total,
				"status":     model.Status,
				"notes":      model.Notes,
				"sent_at":    model.SentAt,
				"paid_at":    model.PaidAt,
				"version":    model.Version,
				"updated_at": model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrStaleVersion
		}

		if inv.Status != invoice.StatusPaid {
			return nil
		}
		return tx.Model(&models.TaskModel{}).
			Scopes(forTenant(inv.TenantID)).
			Where("invoice_id = ? AND status <> ?", inv.ID, task.StatusCompleted).
			Updates(map[string]any{
				"status":     task.StatusCompleted,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			}).Error
	})
	if err != nil {
		return err
	}
	inv.MarkPersisted()
	return nil
}

// Delete releases the tasks of the invoice and removes it with its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TaskModel{}).
			Scopes(forTenant(inv.TenantID)).
			Where("invoice_id = ?", inv.ID).
			Updates(map[string]any{
				"invoiced":   false,
				"invoice_id": nil,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Scopes(forTenant(inv.TenantID)).
			Where("id = ?", inv.ID).
			Delete(&models.InvoiceModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return invoice.ErrInvoiceNotFound
		}
		return nil
	})
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	f := filter.Filters
	if v, ok := f["client_id"]; ok && v != nil && v != "" {
		query = query.Where("client_id = ?", v)
	}
	if v, ok := f["status"]; ok && v != nil && v != "" {
		query = query.Where("status = ?", v)
	}
	return query
}

var _ invoice.Repository = (*GormInvoiceRepository)(nil)
