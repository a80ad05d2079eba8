package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the row of the invoices table
type InvoiceModel struct {
	TenantAggregateModel
	Sequence  int64              `gorm:"not null"`
	Number    string             `gorm:"type:varchar(32);not null"`
	ClientID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	IssueDate time.Time          `gorm:"type:date;not null"`
	DueDate   *time.Time         `gorm:"type:date"`
	Subtotal  decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Tax       decimal.Decimal    `gorm:"type:decimal(7,4);not null;default:0"`
	Total     decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Status    invoice.Status     `gorm:"type:varchar(20);not null;default:'draft'"`
	Notes     string             `gorm:"type:text;not null;default:''"`
	SentAt    *time.Time         `gorm:""`
	PaidAt    *time.Time         `gorm:""`
	Lines     []InvoiceLineModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is the row of the invoice_lines table
type InvoiceLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TaskID      uuid.UUID       `gorm:"type:uuid;not null"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(2000);not null"`
	Date        time.Time       `gorm:"type:date;not null"`
	Hours       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// InvoiceSequenceModel holds the last invoice number handed out per tenant
type InvoiceSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}

// ToDomain converts the row and its loaded lines to an Invoice
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		TenantAggregateRoot: m.ToDomainRoot(),
		Sequence:            m.Sequence,
		Number:              m.Number,
		ClientID:            m.ClientID,
		IssueDate:           task.TruncateDate(m.IssueDate),
		Subtotal:            m.Subtotal,
		Tax:                 m.Tax,
		Total:               m.Total,
		Status:              m.Status,
		Notes:               m.Notes,
		SentAt:              m.SentAt,
		PaidAt:              m.PaidAt,
		Lines:               make([]invoice.Line, len(m.Lines)),
	}
	if m.DueDate != nil {
		due := task.TruncateDate(*m.DueDate)
		inv.DueDate = &due
	}
	for i, l := range m.Lines {
		inv.Lines[i] = invoice.Line{
			ID:          l.ID,
			TaskID:      l.TaskID,
			Position:    l.Position,
			Description: l.Description,
			Date:        task.TruncateDate(l.Date),
			Hours:       l.Hours,
			HourlyRate:  l.HourlyRate,
			Amount:      l.Amount,
		}
	}
	return inv
}

// InvoiceModelFromDomain builds the invoice row and its line rows
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Sequence:  inv.Sequence,
		Number:    inv.Number,
		ClientID:  inv.ClientID,
		IssueDate: inv.IssueDate,
		DueDate:   inv.DueDate,
		Subtotal:  inv.Subtotal,
		Tax:       inv.Tax,
		Total:     inv.Total,
		Status:    inv.Status,
		Notes:     inv.Notes,
		SentAt:    inv.SentAt,
		PaidAt:    inv.PaidAt,
		Lines:     make([]InvoiceLineModel, len(inv.Lines)),
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	for i, l := range inv.Lines {
		m.Lines[i] = InvoiceLineModel{
			ID:          l.ID,
			InvoiceID:   inv.ID,
			TaskID:      l.TaskID,
			Position:    l.Position,
			Description: l.Description,
			Date:        l.Date,
			Hours:       l.Hours,
			HourlyRate:  l.HourlyRate,
			Amount:      l.Amount,
		}
	}
	return m
}
