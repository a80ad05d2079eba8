package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest bills the listed tasks of one client. Lines follow the
// order of TaskIDs.
type CreateInvoiceRequest struct {
	ClientID uuid.UUID       `json:"client_id" binding:"required"`
	TaskIDs  []uuid.UUID     `json:"task_ids" binding:"required,min=1,dive,required"`
	Date     string          `json:"date" binding:"required,datetime=2006-01-02"`
	DueDate  string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Tax      decimal.Decimal `json:"tax"`
	Notes    string          `json:"notes" binding:"max=4000"`
}

// UpdateInvoiceRequest changes the fields that are present. An empty DueDate
// clears it.
type UpdateInvoiceRequest struct {
	Date    *string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	DueDate *string          `json:"due_date"`
	Tax     *decimal.Decimal `json:"tax"`
	Notes   *string          `json:"notes" binding:"omitempty,max=4000"`
	Status  *string          `json:"status" binding:"omitempty,oneof=draft sent paid"`
}

// UpdateStatusRequest moves an invoice through its lifecycle
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent paid"`
}

// SendInvoiceRequest names who receives the invoice mail
type SendInvoiceRequest struct {
	RecipientEmail string `json:"recipient_email" binding:"required,email,max=320"`
	RecipientName  string `json:"recipient_name" binding:"max=200"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=draft sent paid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineResponse is one billed task on an invoice
type LineResponse struct {
	TaskID      uuid.UUID       `json:"task_id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Hours       decimal.Decimal `json:"hours"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Number    string          `json:"number"`
	ClientID  uuid.UUID       `json:"client_id"`
	Date      string          `json:"date"`
	DueDate   *string         `json:"due_date,omitempty"`
	Lines     []LineResponse  `json:"lines"`
	TaskIDs   []uuid.UUID     `json:"task_ids"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	Overdue   bool            `json:"overdue"`
	Notes     string          `json:"notes"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// ToInvoiceResponse converts a domain Invoice, judging overdue at now
func ToInvoiceResponse(inv *invoice.Invoice, now time.Time) InvoiceResponse {
	resp := InvoiceResponse{
		ID:        inv.ID,
		TenantID:  inv.TenantID,
		Number:    inv.Number,
		ClientID:  inv.ClientID,
		Date:      inv.IssueDate.Format(time.DateOnly),
		Lines:     make([]LineResponse, len(inv.Lines)),
		TaskIDs:   inv.TaskIDs(),
		Subtotal:  inv.Subtotal,
		Tax:       inv.Tax,
		Total:     inv.Total,
		Status:    string(inv.Status),
		Overdue:   inv.IsOverdue(now),
		Notes:     inv.Notes,
		SentAt:    inv.SentAt,
		PaidAt:    inv.PaidAt,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
		Version:   inv.Version,
	}
	if inv.DueDate != nil {
		due := inv.DueDate.Format(time.DateOnly)
		resp.DueDate = &due
	}
	for i, l := range inv.Lines {
		resp.Lines[i] = LineResponse{
			TaskID:      l.TaskID,
			Position:    l.Position,
			Description: l.Description,
			Date:        l.Date.Format(time.DateOnly),
			Hours:       l.Hours,
			HourlyRate:  l.HourlyRate,
			Amount:      l.Amount,
		}
	}
	return resp
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, invoice.ErrInvalidIssueDate
	}
	return d, nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, invoice.ErrInvalidDueDate
	}
	return &d, nil
}
