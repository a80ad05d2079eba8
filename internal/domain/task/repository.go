package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Repository defines persistence for tasks. Every method is tenant scoped.
type Repository interface {
	// FindByIDForTenant finds a task by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Task, error)

	// FindByIDs loads tasks by id; ids owned by another tenant are skipped
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Task, error)

	// FindAllForTenant lists tasks. Filters: "client_id", "status", "invoiced",
	// "date_from", "date_to"; search on description.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Task, error)

	// CountForTenant counts tasks matching filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindUnbilledByClient lists un-invoiced tasks of a client, oldest first
	FindUnbilledByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]Task, error)

	// FindRecent lists the newest tasks by date
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]Task, error)

	// SummarizeUnbilled sums hours and amounts of un-invoiced tasks
	SummarizeUnbilled(ctx context.Context, tenantID uuid.UUID) (UnbilledSummary, error)

	// Save creates or updates a task
	Save(ctx context.Context, t *Task) error

	// DeleteForTenant removes an un-invoiced task. It returns ErrTaskInvoiced
	// when the row was invoiced at delete time.
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// UnbilledSummary aggregates un-invoiced work
type UnbilledSummary struct {
	Count  int64
	Hours  decimal.Decimal
	Amount decimal.Decimal
	Oldest *time.Time
}
