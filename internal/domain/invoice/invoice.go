package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/shared/valueobject"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/shopspring/decimal"
)

// Errors raised by invoice rules
var (
	ErrInvoiceNotFound     = shared.NewNotFoundError("INVOICE_NOT_FOUND", "Invoice not found")
	ErrNoTasks             = shared.NewValidationError("INVOICE_NO_TASKS", "An invoice needs at least one task")
	ErrDuplicateTask       = shared.NewValidationError("INVOICE_DUPLICATE_TASK", "A task can appear only once on an invoice")
	ErrTaskClientMismatch  = shared.NewValidationError("INVOICE_TASK_CLIENT_MISMATCH", "All tasks must belong to the invoiced client")
	ErrTaskNotFound        = shared.NewNotFoundError("INVOICE_TASK_NOT_FOUND", "One or more tasks were not found")
	ErrTaskAlreadyInvoiced = shared.NewConflictError("INVOICE_TASK_ALREADY_INVOICED", "One or more tasks are already invoiced")
	ErrInvalidTax          = shared.NewValidationError("INVALID_TAX", "Tax must be between 0 and 100 with at most 2 decimal places")
	ErrInvalidDueDate      = shared.NewValidationError("INVALID_DUE_DATE", "Due date cannot be before the issue date")
	ErrInvalidIssueDate    = shared.NewValidationError("INVALID_ISSUE_DATE", "Issue date is required")
	ErrInvalidStatus       = shared.NewValidationError("INVALID_INVOICE_STATUS", "Status must be draft, sent or paid")
	ErrInvalidTransition   = shared.NewValidationError("INVALID_STATUS_TRANSITION", "Invoice status cannot change that way")
	ErrInvoicePaid         = shared.NewInvalidStateError("INVOICE_PAID", "A paid invoice cannot be edited")
	ErrNotesTooLong        = shared.NewValidationError("NOTES_TOO_LONG", "Notes cannot exceed 4000 characters")
	ErrSendInProgress      = shared.NewConflictError("INVOICE_SEND_IN_PROGRESS", "This invoice is already being sent")
	ErrInvalidRecipient    = shared.NewValidationError("INVALID_RECIPIENT", "Recipient email must look like name@domain.tld")
)

var (
	minTax = decimal.Zero
	maxTax = decimal.NewFromInt(100)
)

const maxNotesLength = 4000

// Line is one billed task, frozen at the moment the invoice was created
type Line struct {
	ID          uuid.UUID
	TaskID      uuid.UUID
	Position    int
	Description string
	Date        time.Time
	Hours       decimal.Decimal
	HourlyRate  decimal.Decimal
	Amount      decimal.Decimal
}

// Invoice bills a set of tasks of one client. It is the aggregate root of the
// invoice lifecycle.
type Invoice struct {
	shared.TenantAggregateRoot
	Sequence  int64
	Number    string
	ClientID  uuid.UUID
	IssueDate time.Time
	DueDate   *time.Time
	Lines     []Line
	Subtotal  decimal.Decimal // snapshot, not recomputed from live tasks
	Tax       decimal.Decimal // percentage 0..100
	Total     decimal.Decimal
	Status    Status
	Notes     string
	SentAt    *time.Time
	PaidAt    *time.Time
}

// Terms are the header fields a person sets on an invoice
type Terms struct {
	IssueDate time.Time
	DueDate   *time.Time
	Tax       decimal.Decimal
	Notes     string
}

func (t Terms) normalize() (Terms, error) {
	if t.IssueDate.IsZero() {
		return t, ErrInvalidIssueDate
	}
	t.IssueDate = task.TruncateDate(t.IssueDate)
	if t.DueDate != nil {
		due := task.TruncateDate(*t.DueDate)
		if due.Before(t.IssueDate) {
			return t, ErrInvalidDueDate
		}
		t.DueDate = &due
	}
	if err := ValidateTax(t.Tax); err != nil {
		return t, err
	}
	t.Notes = strings.TrimSpace(t.Notes)
	if len(t.Notes) > maxNotesLength {
		return t, ErrNotesTooLong
	}
	return t, nil
}

// ValidateTax checks tax is a percentage in [0, 100] with at most
// InputPlaces decimals
func ValidateTax(tax decimal.Decimal) error {
	if !valueobject.InRange(tax, minTax, maxTax) || !valueobject.HasAtMostPlaces(tax, valueobject.InputPlaces) {
		return ErrInvalidTax
	}
	return nil
}

// NewInvoice builds a draft invoice for clientID from tasks, in the given order.
// Every task must be owned by tenantID, belong to clientID and be un-invoiced.
// The number is assigned when the invoice is stored.
func NewInvoice(tenantID, clientID uuid.UUID, terms Terms, tasks []*task.Task) (*Invoice, error) {
	tm, err := terms.normalize()
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		IssueDate:           tm.IssueDate,
		DueDate:             tm.DueDate,
		Tax:                 tm.Tax,
		Notes:               tm.Notes,
		Status:              StatusDraft,
		Lines:               make([]Line, 0, len(tasks)),
	}

	seen := make(map[uuid.UUID]struct{}, len(tasks))
	amounts := make([]decimal.Decimal, 0, len(tasks))
	for i, t := range tasks {
		if t == nil || t.TenantID != tenantID {
			return nil, ErrTaskNotFound
		}
		if _, dup := seen[t.ID]; dup {
			return nil, ErrDuplicateTask
		}
		seen[t.ID] = struct{}{}
		if t.ClientID != clientID {
			return nil, ErrTaskClientMismatch
		}
		if t.Invoiced {
			return nil, ErrTaskAlreadyInvoiced
		}
		inv.Lines = append(inv.Lines, Line{
			ID:          uuid.New(),
			TaskID:      t.ID,
			Position:    i + 1,
			Description: t.Description,
			Date:        t.Date,
			Hours:       t.Hours,
			HourlyRate:  t.HourlyRate,
			Amount:      t.Amount,
		})
		amounts = append(amounts, t.Amount)
	}

	inv.Subtotal = valueobject.Sum(amounts...)
	inv.recomputeTotal()
	return inv, nil
}

// recomputeTotal rounds to the stored scale so a reloaded invoice keeps the
// same total
func (i *Invoice) recomputeTotal() {
	i.Total = valueobject.RoundToStorage(valueobject.WithPercentage(i.Subtotal, i.Tax))
}

// FormatNumber renders a sequence value as a human readable invoice number
func FormatNumber(seq int64) string {
	return fmt.Sprintf("INV-%06d", seq)
}

// AssignNumber sets the tenant sequence value allocated for this invoice and
// records the creation event
func (i *Invoice) AssignNumber(seq int64) {
	i.Sequence = seq
	i.Number = FormatNumber(seq)
	i.AddDomainEvent(NewInvoiceCreatedEvent(i))
}

// TaskIDs returns the referenced task ids in line order
func (i *Invoice) TaskIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(i.Lines))
	for n, l := range i.Lines {
		ids[n] = l.TaskID
	}
	return ids
}

// UpdateTerms replaces dates, tax and notes. Total follows the new tax.
func (i *Invoice) UpdateTerms(terms Terms) error {
	if i.Status == StatusPaid {
		return ErrInvoicePaid
	}
	tm, err := terms.normalize()
	if err != nil {
		return err
	}
	i.IssueDate = tm.IssueDate
	i.DueDate = tm.DueDate
	i.Tax = tm.Tax
	i.Notes = tm.Notes
	i.recomputeTotal()
	i.IncrementVersion()
	return nil
}

// Terms returns the current header fields
func (i *Invoice) Terms() Terms {
	return Terms{IssueDate: i.IssueDate, DueDate: i.DueDate, Tax: i.Tax, Notes: i.Notes}
}

// TransitionTo moves the invoice to next at time now. It returns false without
// error when the invoice already has that status.
func (i *Invoice) TransitionTo(next Status, now time.Time) (bool, error) {
	if !next.IsValid() {
		return false, ErrInvalidStatus
	}
	if i.Status == next {
		return false, nil
	}
	if !i.Status.CanTransitionTo(next) {
		return false, fmt.Errorf("%w: %s to %s, allowed %v", ErrInvalidTransition, i.Status, next, i.Status.AllowedTransitions())
	}

	old := i.Status
	i.Status = next
	now = now.UTC()
	switch next {
	case StatusSent:
		i.SentAt = &now
	case StatusPaid:
		i.PaidAt = &now
	case StatusDraft:
		i.SentAt = nil
	}
	i.IncrementVersion()
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, old))
	return true, nil
}

// MarkSent records successful delivery
func (i *Invoice) MarkSent(now time.Time) error {
	_, err := i.TransitionTo(StatusSent, now)
	return err
}

// MarkPaid records payment
func (i *Invoice) MarkPaid(now time.Time) error {
	_, err := i.TransitionTo(StatusPaid, now)
	return err
}

// IsOverdue reports whether an unpaid invoice is past its due date at now
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status == StatusPaid || i.DueDate == nil {
		return false
	}
	return task.TruncateDate(now).After(*i.DueDate)
}
