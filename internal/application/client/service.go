// Package client implements the client use cases: registering the people a
// freelancer bills, keeping their details and rates current, archiving them
// and removing the ones nothing refers to.
package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/client"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service handles client-related business operations
type Service struct {
	repo   client.Repository
	usage  client.UsageChecker
	events shared.EventPublisher
	logger *zap.Logger
}

// NewService creates a new client Service. A nil publisher drops events.
func NewService(repo client.Repository, usage client.UsageChecker, events shared.EventPublisher, logger *zap.Logger) *Service {
	if events == nil {
		events = shared.NoopEventPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, usage: usage, events: events, logger: logger}
}

// Create registers an active client. The email must not belong to another
// active client of the tenant.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "create", telemetry.SpanAttrTenantID, tenantID)
	defer span.End()

	c, err := client.NewClient(tenantID, client.Details{
		Name:       req.Name,
		Email:      req.Email,
		Address:    req.Address,
		Website:    req.Website,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, tenantID, c.Email, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, c)

	response := ToClientResponse(c)
	return &response, nil
}

// GetByID retrieves a client by ID
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(c)
	return &response, nil
}

// List retrieves clients with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ClientListFilter) ([]ClientResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	clients, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToClientResponses(clients), total, nil
}

// Update replaces the details of a client and optionally its status
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "update",
		telemetry.SpanAttrTenantID, tenantID, telemetry.SpanAttrClientID, id)
	defer span.End()

	c, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := c.Update(client.Details{
		Name:       req.Name,
		Email:      req.Email,
		Address:    req.Address,
		Website:    req.Website,
		HourlyRate: req.HourlyRate,
	}); err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := c.SetStatus(client.Status(*req.Status)); err != nil {
			return nil, err
		}
	}

	if c.IsActive() {
		if err := s.ensureEmailFree(ctx, tenantID, c.Email, c.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, c)

	response := ToClientResponse(c)
	return &response, nil
}

// Archive marks a client inactive. Archived clients keep their history.
func (s *Service) Archive(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	c.Archive()
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)

	response := ToClientResponse(c)
	return &response, nil
}

// Remove hard-deletes a client that no task or invoice refers to
func (s *Service) Remove(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "remove",
		telemetry.SpanAttrTenantID, tenantID, telemetry.SpanAttrClientID, id)
	defer span.End()

	c, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}

	tasks, err := s.usage.CountTasksByClient(ctx, tenantID, id)
	if err != nil {
		return err
	}
	invoices, err := s.usage.CountInvoicesByClient(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if tasks > 0 || invoices > 0 {
		return client.ErrClientInUse
	}

	if err := s.repo.DeleteForTenant(ctx, tenantID, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	c.AddDomainEvent(client.NewClientDeletedEvent(c))
	s.publish(ctx, c)
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, tenantID uuid.UUID, email string, excludeID uuid.UUID) error {
	exists, err := s.repo.ExistsActiveByEmail(ctx, tenantID, client.NormalizeEmail(email), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return client.ErrEmailExists
	}
	return nil
}

func (s *Service) publish(ctx context.Context, c *client.Client) {
	if err := shared.PublishPending(ctx, s.events, c); err != nil {
		s.logger.Warn("Failed to publish client events", zap.String("client_id", c.ID.String()), zap.Error(err))
	}
}
