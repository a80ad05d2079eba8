package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func newTestBillingMetrics(t *testing.T) (*BillingMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := NewMeterProviderWithReader(reader, zap.NewNop())
	m, err := NewBillingMetrics(mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)
	return m, reader
}

func TestNewBillingMetrics_NilMeter(t *testing.T) {
	_, err := NewBillingMetrics(nil, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestBillingMetrics_InvoiceCreated(t *testing.T) {
	m, reader := newTestBillingMetrics(t)
	tenant := uuid.New()

	m.RecordInvoiceCreated(context.Background(), tenant, decimal.RequireFromString("1234.56"))
	m.RecordInvoiceCreated(context.Background(), tenant, decimal.RequireFromString("0.45"))

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, got["invoicer_invoices_created_total"]))
	assert.Equal(t, int64(123501), sumValue(t, got["invoicer_invoiced_amount_cents_total"]))
}

func TestBillingMetrics_StatusChange(t *testing.T) {
	m, reader := newTestBillingMetrics(t)
	tenant := uuid.New()
	ctx := context.Background()

	m.RecordStatusChange(ctx, tenant, "draft", "sent", decimal.NewFromInt(100))
	m.RecordStatusChange(ctx, tenant, "sent", "paid", decimal.NewFromInt(100))

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, got["invoicer_invoice_status_transitions_total"]))
	assert.Equal(t, int64(10000), sumValue(t, got["invoicer_paid_amount_cents_total"]))
}

func TestBillingMetrics_MailAndRender(t *testing.T) {
	m, reader := newTestBillingMetrics(t)
	ctx := context.Background()

	m.RecordMailAttempt(ctx, 1, errors.New("timeout"))
	m.RecordMailAttempt(ctx, 2, nil)
	m.RecordPDFRender(ctx, 1500*time.Millisecond, nil)
	m.RecordTaskLogged(ctx, uuid.New(), decimal.RequireFromString("1.5"))

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, got["invoicer_mail_attempts_total"]))
	assert.Equal(t, int64(90), sumValue(t, got["invoicer_task_minutes_logged_total"]))

	hist, ok := got["invoicer_pdf_render_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 1.5, hist.DataPoints[0].Sum, 0.0001)
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(1001), toCents(decimal.RequireFromString("10.005")))
	assert.Equal(t, int64(0), toCents(decimal.Zero))
}
