// Package invoice implements the invoice lifecycle: billing unbilled tasks,
// editing and recalling drafts, mailing invoices to clients, recording
// payment and printing PDFs.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/client"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/profile"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/shared/valueobject"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/invoicer/backend/internal/infrastructure/mail"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultSendLockTTL bounds how long a send claim is held
const DefaultSendLockTTL = 2 * time.Minute

// sendStatusAttempts bounds the reload-and-retry of the sent status write
const sendStatusAttempts = 3

// ProfileLoader returns the sender details of a tenant, never nil on success
type ProfileLoader interface {
	Load(ctx context.Context, tenantID uuid.UUID) (*profile.Profile, error)
}

// Dependencies are the collaborators of the invoice Service
type Dependencies struct {
	Invoices    invoice.Repository
	Clients     client.Repository
	Tasks       task.Repository
	Profiles    ProfileLoader
	Idempotency shared.IdempotencyStore
	Mailer      mail.Mailer
	Templates   *printing.TemplateEngine
	Renderer    printing.PDFRenderer
	Metrics     *telemetry.BillingMetrics
	Events      shared.EventPublisher
	Logger      *zap.Logger
}

// Options tune the invoice Service
type Options struct {
	// PublicURL is the base of the link in invoice mails
	PublicURL   string
	SendLockTTL time.Duration
	PaperSize   printing.PaperSize
	Now         func() time.Time
}

// Service handles invoice-related business operations
type Service struct {
	Dependencies
	opts Options
}

// NewService creates a new invoice Service
func NewService(deps Dependencies, opts Options) *Service {
	if deps.Events == nil {
		deps.Events = shared.NoopEventPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.SendLockTTL <= 0 {
		opts.SendLockTTL = DefaultSendLockTTL
	}
	if !opts.PaperSize.IsValid() {
		opts.PaperSize = printing.PaperSizeA4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{Dependencies: deps, opts: opts}
}

// Create bills the requested tasks of one client as a new draft invoice. The
// next tenant number is allocated and the tasks are claimed atomically; a
// task claimed concurrently by another invoice fails the whole request.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create",
		telemetry.SpanAttrTenantID, tenantID,
		telemetry.SpanAttrClientID, req.ClientID,
		telemetry.SpanAttrTaskCount, len(req.TaskIDs),
	)
	defer span.End()

	terms, err := s.createTerms(req)
	if err != nil {
		return nil, err
	}
	if len(req.TaskIDs) == 0 {
		return nil, invoice.ErrNoTasks
	}
	seen := make(map[uuid.UUID]struct{}, len(req.TaskIDs))
	for _, id := range req.TaskIDs {
		if _, dup := seen[id]; dup {
			return nil, invoice.ErrDuplicateTask
		}
		seen[id] = struct{}{}
	}

	c, err := s.Clients.FindByIDForTenant(ctx, tenantID, req.ClientID)
	if err != nil {
		return nil, err
	}
	found, err := s.Tasks.FindByIDs(ctx, tenantID, req.TaskIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*task.Task, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	ordered := make([]*task.Task, len(req.TaskIDs))
	for i, id := range req.TaskIDs {
		t, ok := byID[id]
		if !ok {
			return nil, invoice.ErrTaskNotFound
		}
		ordered[i] = t
	}

	inv, err := invoice.NewInvoice(tenantID, c.ID, terms, ordered)
	if err != nil {
		return nil, err
	}
	if err := s.Invoices.Create(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, inv.ID,
		telemetry.SpanAttrInvoiceNumber, inv.Number,
	)
	s.Logger.Info("Invoice created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.Int("lines", len(inv.Lines)),
	)
	s.publish(ctx, inv)

	resp := ToInvoiceResponse(inv, s.opts.Now())
	return &resp, nil
}

func (s *Service) createTerms(req CreateInvoiceRequest) (invoice.Terms, error) {
	issue, err := parseDate(req.Date)
	if err != nil {
		return invoice.Terms{}, err
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return invoice.Terms{}, err
	}
	if err := invoice.ValidateTax(req.Tax); err != nil {
		return invoice.Terms{}, err
	}
	return invoice.Terms{IssueDate: issue, DueDate: due, Tax: req.Tax, Notes: req.Notes}, nil
}

// GetByID retrieves an invoice with its lines
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.Invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, s.opts.Now())
	return &resp, nil
}

// List retrieves invoices with filtering and pagination, newest number first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "sequence"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
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

	invoices, err := s.Invoices.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Invoices.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := s.opts.Now()
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i], now)
	}
	return out, total, nil
}

// UpdateStatus moves an invoice to status. Setting the current status
// changes nothing; paying completes the billed tasks.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update_status",
		telemetry.SpanAttrTenantID, tenantID,
		telemetry.SpanAttrInvoiceID, id,
		telemetry.SpanAttrInvoiceStatus, status,
	)
	defer span.End()

	inv, err := s.Invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	changed, err := inv.TransitionTo(invoice.Status(status), s.opts.Now())
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.Invoices.Update(ctx, inv); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.publish(ctx, inv)
	}

	resp := ToInvoiceResponse(inv, s.opts.Now())
	return &resp, nil
}

// MarkAsPaid records payment and completes the billed tasks
func (s *Service) MarkAsPaid(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.UpdateStatus(ctx, tenantID, id, string(invoice.StatusPaid))
}

// Update edits the header fields present in req and then applies the status,
// if any. Paid invoices reject field edits.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update",
		telemetry.SpanAttrTenantID, tenantID, telemetry.SpanAttrInvoiceID, id)
	defer span.End()

	inv, err := s.Invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	dirty := false
	if req.Date != nil || req.DueDate != nil || req.Tax != nil || req.Notes != nil {
		terms := inv.Terms()
		if req.Date != nil {
			if terms.IssueDate, err = parseDate(*req.Date); err != nil {
				return nil, err
			}
		}
		if req.DueDate != nil {
			if terms.DueDate, err = parseOptionalDate(*req.DueDate); err != nil {
				return nil, err
			}
		}
		if req.Tax != nil {
			terms.Tax = *req.Tax
		}
		if req.Notes != nil {
			terms.Notes = *req.Notes
		}
		if err := inv.UpdateTerms(terms); err != nil {
			return nil, err
		}
		dirty = true
	}
	if req.Status != nil {
		changed, err := inv.TransitionTo(invoice.Status(*req.Status), s.opts.Now())
		if err != nil {
			return nil, err
		}
		dirty = dirty || changed
	}

	if dirty {
		if err := s.Invoices.Update(ctx, inv); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.publish(ctx, inv)
	}
	resp := ToInvoiceResponse(inv, s.opts.Now())
	return &resp, nil
}

// Delete removes an invoice and returns its tasks to the unbilled pool
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete",
		telemetry.SpanAttrTenantID, tenantID, telemetry.SpanAttrInvoiceID, id)
	defer span.End()

	inv, err := s.Invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.Invoices.Delete(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	inv.AddDomainEvent(invoice.NewInvoiceDeletedEvent(inv))
	s.publish(ctx, inv)
	return nil
}

// Send mails the invoice to the recipient and marks it sent once delivery
// succeeded. A second send of the same invoice while one is running fails
// with invoice.ErrSendInProgress. On delivery failure the invoice is left
// untouched and may be sent again.
func (s *Service) Send(ctx context.Context, tenantID, id uuid.UUID, req SendInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "send",
		telemetry.SpanAttrTenantID, tenantID, telemetry.SpanAttrInvoiceID, id)
	defer span.End()

	recipient, err := valueobject.NewEmail(req.RecipientEmail)
	if err != nil {
		return nil, invoice.ErrInvalidRecipient
	}

	inv, err := s.Invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != invoice.StatusSent && !inv.Status.CanTransitionTo(invoice.StatusSent) {
		return nil, invoice.ErrInvalidTransition
	}

	key := SendIdempotencyKey(tenantID, id)
	claimed, err := s.Idempotency.MarkProcessed(ctx, key, s.opts.SendLockTTL)
	if err != nil {
		return nil, fmt.Errorf("claim send lock: %w", err)
	}
	if !claimed {
		return nil, invoice.ErrSendInProgress
	}

	if err := s.deliver(ctx, inv, recipient.String(), req.RecipientName); err != nil {
		telemetry.RecordError(span, err)
		s.release(ctx, key)
		return nil, err
	}
	telemetry.AddEvent(span, "mail.delivered", "recipient_domain", recipient.Domain())

	inv, err = s.markSent(ctx, inv)
	s.release(ctx, key)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.Logger.Info("Invoice sent",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
	)
	resp := ToInvoiceResponse(inv, s.opts.Now())
	return &resp, nil
}

// markSent records delivery on inv. The mail is already out, so a concurrent
// write is resolved by reloading and retrying rather than failing the send.
func (s *Service) markSent(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	for attempt := 1; ; attempt++ {
		changed, err := inv.TransitionTo(invoice.StatusSent, s.opts.Now())
		if err != nil {
			if attempt > 1 {
				// changed underneath us, e.g. paid meanwhile; delivery stands
				s.Logger.Warn("Invoice changed while being sent, status left as is",
					zap.String("invoice_id", inv.ID.String()),
					zap.String("status", string(inv.Status)),
				)
				return inv, nil
			}
			return nil, err
		}
		if !changed {
			return inv, nil
		}
		err = s.Invoices.Update(ctx, inv)
		if err == nil {
			s.publish(ctx, inv)
			return inv, nil
		}
		if !errors.Is(err, shared.ErrStaleVersion) || attempt >= sendStatusAttempts {
			return nil, fmt.Errorf("mark invoice %s sent after delivery: %w", inv.Number, err)
		}
		s.Logger.Warn("Stale invoice after delivery, reloading",
			zap.String("invoice_id", inv.ID.String()),
			zap.Int("attempt", attempt),
		)
		if inv, err = s.Invoices.FindByIDForTenant(ctx, inv.TenantID, inv.ID); err != nil {
			return nil, err
		}
	}
}

// SendIdempotencyKey is the claim held while an invoice is being mailed
func SendIdempotencyKey(tenantID, invoiceID uuid.UUID) string {
	return "invoice-send:" + tenantID.String() + ":" + invoiceID.String()
}

func (s *Service) deliver(ctx context.Context, inv *invoice.Invoice, to, toName string) error {
	sender, err := s.Profiles.Load(ctx, inv.TenantID)
	if err != nil {
		return err
	}
	if toName == "" {
		c, err := s.Clients.FindByIDForTenant(ctx, inv.TenantID, inv.ClientID)
		if err != nil {
			return err
		}
		toName = c.Name
	}

	subject, body, err := s.Templates.RenderInvoiceEmail(ctx, &printing.InvoiceEmail{
		Number:        inv.Number,
		BusinessName:  sender.DisplayName(),
		RecipientName: toName,
		Total:         inv.Total,
		DueDate:       inv.DueDate,
		ViewURL:       s.viewURL(inv.ID),
	})
	if err != nil {
		return fmt.Errorf("render invoice mail: %w", err)
	}

	if err := s.Mailer.Send(ctx, mail.Message{
		To:       to,
		ToName:   toName,
		Subject:  subject,
		HTMLBody: body,
		ReplyTo:  sender.Email,
	}); err != nil {
		return fmt.Errorf("deliver invoice %s: %w", inv.Number, err)
	}
	return nil
}

func (s *Service) viewURL(id uuid.UUID) string {
	return s.opts.PublicURL + "/invoices/" + id.String()
}

func (s *Service) release(ctx context.Context, key string) {
	// the request context may already be cancelled
	if err := s.Idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
		s.Logger.Warn("Failed to release send lock", zap.String("key", key), zap.Error(err))
	}
}

// RenderPDF prints the invoice with the tenant's business profile and the
// client's details
func (s *Service) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "render_pdf",
		telemetry.SpanAttrTenantID, tenantID, telemetry.SpanAttrInvoiceID, id)
	defer span.End()

	inv, err := s.Invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, "", err
	}
	c, err := s.Clients.FindByIDForTenant(ctx, tenantID, inv.ClientID)
	if err != nil {
		return nil, "", err
	}
	sender, err := s.Profiles.Load(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}

	html, err := s.Templates.RenderInvoiceHTML(ctx, BuildDocument(inv, c, sender))
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	result, err := s.Renderer.Render(ctx, &printing.RenderRequest{
		HTML:      html,
		Title:     inv.Number,
		PaperSize: s.opts.PaperSize,
		Margins:   printing.DefaultMargins(),
	})
	if s.Metrics != nil {
		s.Metrics.RecordPDFRender(ctx, time.Since(start), err)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, "", err
	}
	telemetry.SetAttributes(span, "pdf.pages", result.PageCount, "pdf.bytes", len(result.PDFData))
	return result.PDFData, inv.Number + ".pdf", nil
}

// BuildDocument assembles what the invoice template prints
func BuildDocument(inv *invoice.Invoice, c *client.Client, sender *profile.Profile) *printing.InvoiceDocument {
	doc := &printing.InvoiceDocument{
		Number:    inv.Number,
		Status:    string(inv.Status),
		IssueDate: inv.IssueDate,
		DueDate:   inv.DueDate,
		From: printing.Party{
			Name:    sender.DisplayName(),
			Email:   sender.Email,
			Address: sender.Address,
			TaxID:   sender.TaxID,
			LogoURL: sender.LogoURL,
		},
		To: printing.Party{
			Name:    c.Name,
			Email:   c.Email,
			Address: c.Address,
			Website: c.Website,
		},
		Lines:     make([]printing.DocumentLine, len(inv.Lines)),
		Subtotal:  inv.Subtotal,
		TaxRate:   inv.Tax,
		TaxAmount: inv.Total.Sub(inv.Subtotal),
		Total:     inv.Total,
		Notes:     inv.Notes,
	}
	for i, l := range inv.Lines {
		doc.Lines[i] = printing.DocumentLine{
			Date:        l.Date,
			Description: l.Description,
			Hours:       l.Hours,
			HourlyRate:  l.HourlyRate,
			Amount:      l.Amount,
		}
	}
	return doc
}

func (s *Service) publish(ctx context.Context, inv *invoice.Invoice) {
	if err := shared.PublishPending(ctx, s.Events, inv); err != nil {
		s.Logger.Warn("Failed to publish invoice events", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
	}
}
