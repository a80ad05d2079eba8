package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/shopspring/decimal"
)

// CreateTaskRequest represents a request to log work for a client. Without
// HourlyRate the client's current rate is used.
type CreateTaskRequest struct {
	ClientID    uuid.UUID        `json:"client_id" binding:"required"`
	Description string           `json:"description" binding:"required,min=1,max=2000"`
	Hours       decimal.Decimal  `json:"hours"`
	Date        string           `json:"date" binding:"required,datetime=2006-01-02"`
	Status      string           `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
}

// UpdateTaskRequest changes the fields that are present
type UpdateTaskRequest struct {
	ClientID    *uuid.UUID       `json:"client_id"`
	Description *string          `json:"description" binding:"omitempty,min=1,max=2000"`
	Hours       *decimal.Decimal `json:"hours"`
	Date        *string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Status      *string          `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
}

// TaskListFilter represents filter options for the task list
type TaskListFilter struct {
	Search   string `form:"search"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=pending in-progress completed"`
	Invoiced *bool  `form:"invoiced"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	Date        string          `json:"date"`
	Status      string          `json:"status"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Amount      decimal.Decimal `json:"amount"`
	Invoiced    bool            `json:"invoiced"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// DashboardStats summarises the tenant's billing position. Unbilled amounts
// use the rate stored on each task.
type DashboardStats struct {
	UnbilledHours     decimal.Decimal `json:"unbilled_hours"`
	UnbilledAmount    decimal.Decimal `json:"unbilled_amount"`
	UnbilledTasks     int64           `json:"unbilled_tasks"`
	OldestUnbilled    *string         `json:"oldest_unbilled,omitempty"`
	TotalClients      int64           `json:"total_clients"`
	ActiveClients     int64           `json:"active_clients"`
	TotalTasks        int64           `json:"total_tasks"`
	TotalInvoices     int64           `json:"total_invoices"`
	DraftAmount       decimal.Decimal `json:"draft_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	OutstandingCount  int64           `json:"outstanding_count"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
}

// ToTaskResponse converts a domain Task to TaskResponse
func ToTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		TenantID:    t.TenantID,
		ClientID:    t.ClientID,
		Description: t.Description,
		Hours:       t.Hours,
		Date:        t.Date.Format(time.DateOnly),
		Status:      string(t.Status),
		HourlyRate:  t.HourlyRate,
		Amount:      t.Amount,
		Invoiced:    t.Invoiced,
		InvoiceID:   t.InvoiceID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}
}

// ToTaskResponses converts a slice of tasks
func ToTaskResponses(tasks []task.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = ToTaskResponse(&tasks[i])
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, task.ErrInvalidDate
	}
	return d, nil
}
