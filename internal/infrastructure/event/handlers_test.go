package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/client"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newDraftInvoice(t *testing.T) *invoice.Invoice {
	t.Helper()
	tenantID := uuid.New()
	clientID := uuid.New()
	tk, err := task.NewTask(tenantID, clientID, decimal.NewFromInt(100), task.Details{
		Description: "Design review",
		Hours:       decimal.RequireFromString("2.5"),
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	inv, err := invoice.NewInvoice(tenantID, clientID, invoice.Terms{
		IssueDate: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Tax:       decimal.NewFromInt(10),
	}, []*task.Task{tk})
	require.NoError(t, err)
	inv.AssignNumber(7)
	return inv
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))
	assert.Empty(t, h.EventTypes())

	inv := newDraftInvoice(t)
	_, err := inv.TransitionTo(invoice.StatusSent, time.Now())
	require.NoError(t, err)

	for _, e := range inv.GetDomainEvents() {
		require.NoError(t, h.Handle(context.Background(), e))
	}
	c, err := client.NewClient(uuid.New(), client.Details{Name: "Acme", Email: "ops@acme.io"})
	require.NoError(t, err)
	c.Archive()
	require.NoError(t, h.Handle(context.Background(), c.GetDomainEvents()[1]))

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 3)

	created := entries[0].ContextMap()
	assert.Equal(t, "InvoiceCreated", created["event_type"])
	assert.Equal(t, "INV-000007", created["number"])
	assert.Equal(t, "275.00", created["total"])

	changed := entries[1].ContextMap()
	assert.Equal(t, "draft", changed["old_status"])
	assert.Equal(t, "sent", changed["new_status"])

	assert.Equal(t, "inactive", entries[2].ContextMap()["new_status"])
}

func TestBillingMetricsHandler(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zap.NewNop())
	metrics, err := telemetry.NewBillingMetrics(mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewBillingMetricsHandler(metrics))

	inv := newDraftInvoice(t)
	_, err = inv.TransitionTo(invoice.StatusPaid, time.Now())
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), inv.GetDomainEvents()...))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), sums["invoicer_invoices_created_total"])
	assert.Equal(t, int64(27500), sums["invoicer_invoiced_amount_cents_total"])
	assert.Equal(t, int64(1), sums["invoicer_invoice_status_transitions_total"])
	assert.Equal(t, int64(27500), sums["invoicer_paid_amount_cents_total"])
}
