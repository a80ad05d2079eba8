package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
)

// Repository defines persistence for clients. Every method is tenant scoped and
// returns ErrClientNotFound for rows owned by another tenant.
type Repository interface {
	// FindByIDForTenant finds a client by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)

	// FindByIDs loads several clients at once; missing ids are skipped
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Client, error)

	// FindAllForTenant lists clients. Filters: "status", search on name and email.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Client, error)

	// CountForTenant counts clients matching filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsActiveByEmail reports whether an active client other than excludeID
	// uses email. Pass uuid.Nil to exclude nothing.
	ExistsActiveByEmail(ctx context.Context, tenantID uuid.UUID, email string, excludeID uuid.UUID) (bool, error)

	// Save creates or updates a client
	Save(ctx context.Context, c *Client) error

	// DeleteForTenant hard-deletes a client
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// UsageChecker answers whether other aggregates still reference a client
type UsageChecker interface {
	CountTasksByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error)
	CountInvoicesByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error)
}
