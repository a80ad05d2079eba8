package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTaskRepository implements task.Repository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByIDForTenant finds a task by ID within a tenant
func (r *GormTaskRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*task.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads tasks by id; ids of other tenants are skipped
func (r *GormTaskRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]task.Task, error) {
	if len(ids) == 0 {
		return []task.Task{}, nil
	}
	var rows []models.TaskModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return tasksToDomain(rows), nil
}

// FindAllForTenant lists tasks page by page, newest date first by default
func (r *GormTaskRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]task.Task, error) {
	var rows []models.TaskModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TaskModel{}).Scopes(forTenant(tenantID)), filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, TaskSortFields, "date")).
		Scopes(paginate(filter.Page, filter.PageSize))
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return tasksToDomain(rows), nil
}

// CountForTenant counts tasks matching filter, ignoring pagination
func (r *GormTaskRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TaskModel{}).Scopes(forTenant(tenantID)), filter).
		Count(&count).Error
	return count, err
}

// FindUnbilledByClient lists un-invoiced tasks of a client, oldest first
func (r *GormTaskRepository) FindUnbilledByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]task.Task, error) {
	var rows []models.TaskModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("client_id = ? AND invoiced = ?", clientID, false).
		Order("date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return tasksToDomain(rows), nil
}

// FindRecent lists the newest tasks by date
func (r *GormTaskRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]task.Task, error) {
	var rows []models.TaskModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return tasksToDomain(rows), nil
}

// unbilledRow receives the aggregate query; the sums come back as text or
// numbers depending on the driver so they are scanned as NullDecimal
type unbilledRow struct {
	Count  int64
	Hours  decimal.NullDecimal
	Amount decimal.NullDecimal
	Oldest *string
}

// SummarizeUnbilled sums hours and snapshot amounts of un-invoiced tasks
func (r *GormTaskRepository) SummarizeUnbilled(ctx context.Context, tenantID uuid.UUID) (task.UnbilledSummary, error) {
	var row unbilledRow
	if err := r.db.WithContext(ctx).Model(&models.TaskModel{}).
		Select("COUNT(*) AS count, SUM(hours) AS hours, SUM(amount) AS amount, CAST(MIN(date) AS TEXT) AS oldest").
		Scopes(forTenant(tenantID)).
		Where("invoiced = ?", false).
		Scan(&row).Error; err != nil {
		return task.UnbilledSummary{}, err
	}

	summary := task.UnbilledSummary{
		Count:  row.Count,
		Hours:  row.Hours.Decimal,
		Amount: row.Amount.Decimal,
	}
	if row.Oldest != nil && len(*row.Oldest) >= 10 {
		if d, err := time.Parse(time.DateOnly, (*row.Oldest)[:10]); err == nil {
			summary.Oldest = &d
		}
	}
	return summary, nil
}

// Save inserts a new task or updates a loaded one under its version
func (r *GormTaskRepository) Save(ctx context.Context, t *task.Task) error {
	model := models.TaskModelFromDomain(t)
	db := r.db.WithContext(ctx)

	if t.LoadedVersion() == 0 {
		if err := db.Create(model).Error; err != nil {
			return err
		}
		t.MarkPersisted()
		return nil
	}

	result := db.Model(&models.TaskModel{}).
		Scopes(forTenant(t.TenantID)).
		Where("id = ? AND version = ?", t.ID, t.LoadedVersion()).
		Updates(map[string]any{
			"client_id":   model.ClientID,
			"description": model.Description,
			"hours":       model.Hours,
			"date":        model.Date,
			"status":      model.Status,
			"hourly_rate": model.HourlyRate,
			"amount":      model.Amount,
			"invoiced":    model.Invoiced,
			"invoice_id":  model.InvoiceID,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrStaleVersion
	}
	t.MarkPersisted()
	return nil
}

// DeleteForTenant removes an un-invoiced task. The invoiced check is part of
// the DELETE so a task claimed by a concurrent invoice survives.
func (r *GormTaskRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	result := db.Scopes(forTenant(tenantID)).
		Where("id = ? AND invoiced = ?", id, false).
		Delete(&models.TaskModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.TaskModel{}).
		Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return task.ErrTaskInvoiced
	}
	return task.ErrTaskNotFound
}

func (r *GormTaskRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	f := filter.Filters
	if v, ok := f["client_id"]; ok && v != nil && v != "" {
		query = query.Where("client_id = ?", v)
	}
	if v, ok := f["status"]; ok && v != nil && v != "" {
		query = query.Where("status = ?", v)
	}
	if v, ok := f["invoiced"].(bool); ok {
		query = query.Where("invoiced = ?", v)
	}
	if v, ok := f["date_from"].(time.Time); ok && !v.IsZero() {
		query = query.Where("date >= ?", task.TruncateDate(v))
	}
	if v, ok := f["date_to"].(time.Time); ok && !v.IsZero() {
		query = query.Where("date <= ?", task.TruncateDate(v))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return query
}

func tasksToDomain(rows []models.TaskModel) []task.Task {
	out := make([]task.Task, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ task.Repository = (*GormTaskRepository)(nil)
