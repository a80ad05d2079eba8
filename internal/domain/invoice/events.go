package invoice

import (
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeInvoice = "Invoice"

const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
	EventTypeInvoiceDeleted       = "InvoiceDeleted"
)

// InvoiceCreatedEvent is published once the invoice and its task claims are stored
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Number    string          `json:"number"`
	ClientID  uuid.UUID       `json:"client_id"`
	TaskCount int             `json:"task_count"`
	Total     decimal.Decimal `json:"total"`
}

func NewInvoiceCreatedEvent(i *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, i.ID, i.TenantID),
		InvoiceID:       i.ID,
		Number:          i.Number,
		ClientID:        i.ClientID,
		TaskCount:       len(i.Lines),
		Total:           i.Total,
	}
}

// InvoiceStatusChangedEvent is published on every status transition
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Number    string          `json:"number"`
	OldStatus Status          `json:"old_status"`
	NewStatus Status          `json:"new_status"`
	Total     decimal.Decimal `json:"total"`
}

func NewInvoiceStatusChangedEvent(i *Invoice, old Status) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, i.ID, i.TenantID),
		InvoiceID:       i.ID,
		Number:          i.Number,
		OldStatus:       old,
		NewStatus:       i.Status,
		Total:           i.Total,
	}
}

// InvoiceDeletedEvent is published after the invoice is removed and its tasks released
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID   `json:"invoice_id"`
	Number        string      `json:"number"`
	ReleasedTasks []uuid.UUID `json:"released_tasks"`
}

func NewInvoiceDeletedEvent(i *Invoice) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, AggregateTypeInvoice, i.ID, i.TenantID),
		InvoiceID:       i.ID,
		Number:          i.Number,
		ReleasedTasks:   i.TaskIDs(),
	}
}
