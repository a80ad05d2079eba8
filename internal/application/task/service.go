// Package task implements logging work against clients and the read models
// built from it: unbilled work per client, recent activity and the dashboard.
package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/client"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultRecentLimit is used when GetRecent is asked for no specific count
const DefaultRecentLimit = 10

// Service handles task-related business operations
type Service struct {
	tasks    task.Repository
	clients  client.Repository
	invoices invoice.Repository
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewService creates a new task Service
func NewService(
	tasks task.Repository,
	clients client.Repository,
	invoices invoice.Repository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if events == nil {
		events = shared.NoopEventPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tasks:    tasks,
		clients:  clients,
		invoices: invoices,
		events:   events,
		logger:   logger,
	}
}

// Create logs work for a client, snapshotting the client's rate unless the
// request overrides it
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "task", "create",
		telemetry.SpanAttrTenantID, tenantID, telemetry.SpanAttrClientID, req.ClientID)
	defer span.End()

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	c, err := s.clients.FindByIDForTenant(ctx, tenantID, req.ClientID)
	if err != nil {
		return nil, err
	}

	rate := c.HourlyRate
	if req.HourlyRate != nil {
		rate = *req.HourlyRate
	}
	t, err := task.NewTask(tenantID, c.ID, rate, task.Details{
		Description: req.Description,
		Hours:       req.Hours,
		Date:        date,
		Status:      task.Status(req.Status),
	})
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Save(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, t)

	response := ToTaskResponse(t)
	return &response, nil
}

// GetByID retrieves a task by ID
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TaskResponse, error) {
	t, err := s.tasks.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToTaskResponse(t)
	return &response, nil
}

// List retrieves tasks with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter TaskListFilter) ([]TaskResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()

	if filter.ClientID != "" {
		id, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, shared.NewValidationError("INVALID_CLIENT_ID", "client_id must be a UUID")
		}
		domainFilter.Filters["client_id"] = id
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Invoiced != nil {
		domainFilter.Filters["invoiced"] = *filter.Invoiced
	}
	if filter.DateFrom != "" {
		d, err := parseDate(filter.DateFrom)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["date_from"] = d
	}
	if filter.DateTo != "" {
		d, err := parseDate(filter.DateTo)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["date_to"] = d
	}

	tasks, err := s.tasks.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tasks.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToTaskResponses(tasks), total, nil
}

// Update applies the fields present in req. Moving a task to another client
// takes that client's rate unless req sets one. Invoiced tasks keep their
// hours, rate and client.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "task", "update",
		telemetry.SpanAttrTenantID, tenantID, telemetry.SpanAttrTaskID, id)
	defer span.End()

	t, err := s.tasks.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	details := task.Details{
		Description: t.Description,
		Hours:       t.Hours,
		Date:        t.Date,
		Status:      t.Status,
	}
	if req.Description != nil {
		details.Description = *req.Description
	}
	if req.Hours != nil {
		details.Hours = *req.Hours
	}
	if req.Date != nil {
		if details.Date, err = parseDate(*req.Date); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		details.Status = task.Status(*req.Status)
	}

	switch {
	case req.ClientID != nil && *req.ClientID != t.ClientID:
		c, err := s.clients.FindByIDForTenant(ctx, tenantID, *req.ClientID)
		if err != nil {
			return nil, err
		}
		rate := c.HourlyRate
		if req.HourlyRate != nil {
			rate = *req.HourlyRate
		}
		if err := t.Reassign(c.ID, rate); err != nil {
			return nil, err
		}
	case req.HourlyRate != nil:
		if err := t.SetRate(*req.HourlyRate); err != nil {
			return nil, err
		}
	}

	if err := t.Update(details); err != nil {
		return nil, err
	}
	if err := s.tasks.Save(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, t)

	response := ToTaskResponse(t)
	return &response, nil
}

// Delete removes a task that is not on an invoice
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	t, err := s.tasks.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := t.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.tasks.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	t.AddDomainEvent(task.NewTaskDeletedEvent(t))
	s.publish(ctx, t)
	return nil
}

// GetUnbilledByClient lists the work of a client that is not on an invoice yet,
// oldest first
func (s *Service) GetUnbilledByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]TaskResponse, error) {
	if _, err := s.clients.FindByIDForTenant(ctx, tenantID, clientID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindUnbilledByClient(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	return ToTaskResponses(tasks), nil
}

// GetRecent lists the newest tasks by date. A non-positive limit means
// DefaultRecentLimit and the limit is capped at shared.MaxPageSize.
func (s *Service) GetRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]TaskResponse, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > shared.MaxPageSize {
		limit = shared.MaxPageSize
	}
	tasks, err := s.tasks.FindRecent(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	return ToTaskResponses(tasks), nil
}

// GetDashboardStats aggregates unbilled work and invoice totals
func (s *Service) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "task", "dashboard_stats", telemetry.SpanAttrTenantID, tenantID)
	defer span.End()

	unbilled, err := s.tasks.SummarizeUnbilled(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	all := shared.Filter{}
	totalTasks, err := s.tasks.CountForTenant(ctx, tenantID, all)
	if err != nil {
		return nil, err
	}
	totalClients, err := s.clients.CountForTenant(ctx, tenantID, all)
	if err != nil {
		return nil, err
	}
	activeClients, err := s.clients.CountForTenant(ctx, tenantID, shared.Filter{
		Filters: map[string]any{"status": string(client.StatusActive)},
	})
	if err != nil {
		return nil, err
	}
	totals, err := s.invoices.TotalsByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		UnbilledHours:     unbilled.Hours,
		UnbilledAmount:    unbilled.Amount,
		UnbilledTasks:     unbilled.Count,
		TotalClients:      totalClients,
		ActiveClients:     activeClients,
		TotalTasks:        totalTasks,
		DraftAmount:       totals[invoice.StatusDraft].Total,
		OutstandingAmount: totals[invoice.StatusSent].Total,
		OutstandingCount:  totals[invoice.StatusSent].Count,
		PaidAmount:        totals[invoice.StatusPaid].Total,
	}
	for _, st := range totals {
		stats.TotalInvoices += st.Count
	}
	if unbilled.Oldest != nil {
		oldest := unbilled.Oldest.Format(time.DateOnly)
		stats.OldestUnbilled = &oldest
	}
	return stats, nil
}

func (s *Service) publish(ctx context.Context, t *task.Task) {
	if err := shared.PublishPending(ctx, s.events, t); err != nil {
		s.logger.Warn("Failed to publish task events", zap.String("task_id", t.ID.String()), zap.Error(err))
	}
}
