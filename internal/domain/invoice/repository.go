package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Repository defines persistence for invoices. The multi-record operations
// (Create, Update of a paid invoice, Delete) are atomic.
type Repository interface {
	// FindByIDForTenant loads an invoice with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindAllForTenant lists invoices with their lines. Filters: "client_id", "status".
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// CountForTenant counts invoices matching filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// TotalsByStatus sums invoice totals per status
	TotalsByStatus(ctx context.Context, tenantID uuid.UUID) (map[Status]StatusTotals, error)

	// Create allocates the next tenant number, stores the invoice and its lines
	// and marks every referenced task invoiced. It fails with
	// ErrTaskAlreadyInvoiced, changing nothing, if any task was claimed first.
	Create(ctx context.Context, inv *Invoice) error

	// Update stores header fields and status. When the invoice is paid the
	// referenced tasks are completed in the same transaction. It returns
	// shared.ErrStaleVersion if the row changed since it was loaded.
	Update(ctx context.Context, inv *Invoice) error

	// Delete releases every referenced task and removes the invoice
	Delete(ctx context.Context, inv *Invoice) error
}

// StatusTotals is the count and sum of totals for one status
type StatusTotals struct {
	Count int64
	Total decimal.Decimal
}
