package event

import (
	"context"

	"github.com/invoicer/backend/internal/domain/client"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per domain event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates the handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// EventTypes subscribes to every event
func (h *AuditLogHandler) EventTypes() []string { return nil }

// Handle logs the event envelope plus the fields that matter for billing
func (h *AuditLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", e.EventID().String()),
		zap.String("event_type", e.EventType()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.String("tenant_id", e.TenantID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
	}

	switch ev := e.(type) {
	case *invoice.InvoiceCreatedEvent:
		fields = append(fields,
			zap.String("number", ev.Number),
			zap.Int("task_count", ev.TaskCount),
			zap.String("total", ev.Total.StringFixed(2)),
		)
	case *invoice.InvoiceStatusChangedEvent:
		fields = append(fields,
			zap.String("number", ev.Number),
			zap.String("old_status", string(ev.OldStatus)),
			zap.String("new_status", string(ev.NewStatus)),
		)
	case *invoice.InvoiceDeletedEvent:
		fields = append(fields,
			zap.String("number", ev.Number),
			zap.Int("released_tasks", len(ev.ReleasedTasks)),
		)
	case *client.ClientStatusChangedEvent:
		fields = append(fields,
			zap.String("old_status", string(ev.OldStatus)),
			zap.String("new_status", string(ev.NewStatus)),
		)
	}

	h.logger.Info("Domain event", fields...)
	return nil
}

// BillingMetricsHandler feeds invoicing events into BillingMetrics
type BillingMetricsHandler struct {
	metrics *telemetry.BillingMetrics
}

// NewBillingMetricsHandler creates the handler
func NewBillingMetricsHandler(metrics *telemetry.BillingMetrics) *BillingMetricsHandler {
	return &BillingMetricsHandler{metrics: metrics}
}

// EventTypes lists the events that move billing numbers
func (h *BillingMetricsHandler) EventTypes() []string {
	return []string{
		invoice.EventTypeInvoiceCreated,
		invoice.EventTypeInvoiceStatusChanged,
		task.EventTypeTaskCreated,
	}
}

// Handle records the event on the matching instrument
func (h *BillingMetricsHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *invoice.InvoiceCreatedEvent:
		h.metrics.RecordInvoiceCreated(ctx, ev.TenantID(), ev.Total)
	case *invoice.InvoiceStatusChangedEvent:
		h.metrics.RecordStatusChange(ctx, ev.TenantID(), string(ev.OldStatus), string(ev.NewStatus), ev.Total)
	case *task.TaskCreatedEvent:
		h.metrics.RecordTaskLogged(ctx, ev.TenantID(), ev.Hours)
	}
	return nil
}

var (
	_ shared.EventHandler = (*AuditLogHandler)(nil)
	_ shared.EventHandler = (*BillingMetricsHandler)(nil)
)
