package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the work status of a task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Errors raised by task rules
var (
	ErrTaskNotFound       = shared.NewNotFoundError("TASK_NOT_FOUND", "Task not found")
	ErrTaskInvoiced       = shared.NewConflictError("TASK_INVOICED", "Task is on an invoice and cannot be deleted")
	ErrTaskLocked         = shared.NewConflictError("TASK_LOCKED", "Hours, rate and client of an invoiced task cannot change")
	ErrNegativeHours      = shared.NewValidationError("INVALID_HOURS", "Hours cannot be negative")
	ErrNegativeRate       = shared.NewValidationError("INVALID_HOURLY_RATE", "Hourly rate cannot be negative")
	ErrHoursPrecision     = shared.NewValidationError("INVALID_HOURS", "Hours can have at most 2 decimal places")
	ErrRatePrecision      = shared.NewValidationError("INVALID_HOURLY_RATE", "Hourly rate can have at most 2 decimal places")
	ErrInvalidDescription = shared.NewValidationError("INVALID_DESCRIPTION", "Description must be between 1 and 2000 characters")
	ErrInvalidDate        = shared.NewValidationError("INVALID_DATE", "Date is required")
	ErrInvalidStatus      = shared.NewValidationError("INVALID_TASK_STATUS", "Status must be pending, in-progress or completed")
)

const maxDescriptionLength = 2000

// Task is a billable unit of work for one client
type Task struct {
	shared.TenantAggregateRoot
	ClientID    uuid.UUID
	Description string
	Hours       decimal.Decimal
	Date        time.Time
	Status      Status
	HourlyRate  decimal.Decimal // snapshot taken from the client
	Amount      decimal.Decimal // always Hours * HourlyRate
	Invoiced    bool
	InvoiceID   *uuid.UUID
}

// Details groups the attributes a person edits on a task
type Details struct {
	Description string
	Hours       decimal.Decimal
	Date        time.Time
	Status      Status
}

func (d Details) normalize() (Details, error) {
	d.Description = strings.TrimSpace(d.Description)
	if d.Description == "" || len(d.Description) > maxDescriptionLength {
		return d, ErrInvalidDescription
	}
	if d.Hours.IsNegative() {
		return d, ErrNegativeHours
	}
	if !valueobject.HasAtMostPlaces(d.Hours, valueobject.InputPlaces) {
		return d, ErrHoursPrecision
	}
	if d.Date.IsZero() {
		return d, ErrInvalidDate
	}
	d.Date = TruncateDate(d.Date)
	if d.Status == "" {
		d.Status = StatusPending
	}
	if !d.Status.IsValid() {
		return d, ErrInvalidStatus
	}
	return d, nil
}

// TruncateDate drops the time of day, keeping the calendar date in UTC
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewTask creates an un-invoiced task for clientID billed at rate
func NewTask(tenantID, clientID uuid.UUID, rate decimal.Decimal, details Details) (*Task, error) {
	d, err := details.normalize()
	if err != nil {
		return nil, err
	}
	if err := validateRate(rate); err != nil {
		return nil, err
	}

	t := &Task{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Description:         d.Description,
		Hours:               d.Hours,
		Date:                d.Date,
		Status:              d.Status,
		HourlyRate:          rate,
	}
	t.recomputeAmount()
	t.AddDomainEvent(NewTaskCreatedEvent(t))
	return t, nil
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return ErrNegativeRate
	}
	if !valueobject.HasAtMostPlaces(rate, valueobject.InputPlaces) {
		return ErrRatePrecision
	}
	return nil
}

// recomputeAmount relies on hours and rate having at most InputPlaces
// decimals, so the product fits StoragePlaces without rounding.
func (t *Task) recomputeAmount() {
	t.Amount = t.Hours.Mul(t.HourlyRate)
}

// Update replaces the editable attributes. Hours of an invoiced task are frozen.
func (t *Task) Update(details Details) error {
	d, err := details.normalize()
	if err != nil {
		return err
	}
	if t.Invoiced && !d.Hours.Equal(t.Hours) {
		return ErrTaskLocked
	}

	t.Description = d.Description
	t.Hours = d.Hours
	t.Date = d.Date
	t.Status = d.Status
	t.recomputeAmount()
	t.IncrementVersion()
	t.AddDomainEvent(NewTaskUpdatedEvent(t))
	return nil
}

// Reassign moves the task to another client, taking that client's rate
func (t *Task) Reassign(clientID uuid.UUID, rate decimal.Decimal) error {
	if t.Invoiced && (clientID != t.ClientID || !rate.Equal(t.HourlyRate)) {
		return ErrTaskLocked
	}
	if err := validateRate(rate); err != nil {
		return err
	}
	t.ClientID = clientID
	t.HourlyRate = rate
	t.recomputeAmount()
	t.IncrementVersion()
	return nil
}

// SetRate overrides the snapshotted rate
func (t *Task) SetRate(rate decimal.Decimal) error {
	return t.Reassign(t.ClientID, rate)
}

// EnsureDeletable returns ErrTaskInvoiced for invoiced tasks
func (t *Task) EnsureDeletable() error {
	if t.Invoiced {
		return ErrTaskInvoiced
	}
	return nil
}
