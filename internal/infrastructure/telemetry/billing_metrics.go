package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BillingMetrics records invoicing activity
type BillingMetrics struct {
	logger *zap.Logger

	invoicesCreated    *Counter
	invoicedCents      *Counter
	statusTransitions  *Counter
	paidCents          *Counter
	mailAttempts       *Counter
	pdfRenderDuration  *Histogram
	tasksLoggedMinutes *Counter
}

// NewBillingMetrics creates the instruments on meter
func NewBillingMetrics(meter metric.Meter, logger *zap.Logger) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &BillingMetrics{logger: logger}

	var err error
	if m.invoicesCreated, err = NewCounter(meter, "invoicer_invoices_created_total", "Invoices created", "{invoice}"); err != nil {
		return nil, err
	}
	if m.invoicedCents, err = NewCounter(meter, "invoicer_invoiced_amount_cents_total", "Invoice totals at creation, in cents", "{cent}"); err != nil {
		return nil, err
	}
	if m.statusTransitions, err = NewCounter(meter, "invoicer_invoice_status_transitions_total", "Invoice status changes", "{transition}"); err != nil {
		return nil, err
	}
	if m.paidCents, err = NewCounter(meter, "invoicer_paid_amount_cents_total", "Invoice totals marked paid, in cents", "{cent}"); err != nil {
		return nil, err
	}
	if m.mailAttempts, err = NewCounter(meter, "invoicer_mail_attempts_total", "Invoice mail delivery attempts", "{attempt}"); err != nil {
		return nil, err
	}
	if m.tasksLoggedMinutes, err = NewCounter(meter, "invoicer_task_minutes_logged_total", "Minutes of work logged on new tasks", "min"); err != nil {
		return nil, err
	}
	if m.pdfRenderDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "invoicer_pdf_render_duration_seconds",
		Description: "Invoice PDF render latency",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordInvoiceCreated counts a new invoice and its total
func (m *BillingMetrics) RecordInvoiceCreated(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal) {
	attrs := AttrTenantID.String(tenantID.String())
	m.invoicesCreated.Inc(ctx, attrs)
	m.invoicedCents.Add(ctx, toCents(total), attrs)
}

// RecordStatusChange counts a status transition. Transitions into paid also
// add the invoice total to the paid amount.
func (m *BillingMetrics) RecordStatusChange(ctx context.Context, tenantID uuid.UUID, from, to string, total decimal.Decimal) {
	m.statusTransitions.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrFromStatus.String(from),
		AttrInvoiceStatus.String(to),
	)
	if to == "paid" {
		m.paidCents.Add(ctx, toCents(total), AttrTenantID.String(tenantID.String()))
	}
}

// RecordMailAttempt counts one delivery attempt
func (m *BillingMetrics) RecordMailAttempt(ctx context.Context, attempt int, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.mailAttempts.Inc(ctx, AttrResult.String(result), attribute.Int("attempt", attempt))
}

// RecordPDFRender records how long a PDF took to render
func (m *BillingMetrics) RecordPDFRender(ctx context.Context, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.pdfRenderDuration.RecordDuration(ctx, d, AttrResult.String(result))
}

// RecordTaskLogged adds the hours of a new task
func (m *BillingMetrics) RecordTaskLogged(ctx context.Context, tenantID uuid.UUID, hours decimal.Decimal) {
	m.tasksLoggedMinutes.Add(ctx, hours.Mul(decimal.NewFromInt(60)).Round(0).IntPart(), AttrTenantID.String(tenantID.String()))
}

func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ErrMeterNil is returned when a nil meter is passed
var ErrMeterNil = &MetricsError{Op: "NewBillingMetrics", Err: "meter cannot be nil"}

// MetricsError is a metrics setup error
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
