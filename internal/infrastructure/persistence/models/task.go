package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/shopspring/decimal"
)

// TaskModel is the row of the tasks table
type TaskModel struct {
	TenantAggregateModel
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(2000);not null"`
	Hours       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Date        time.Time       `gorm:"type:date;not null;index"`
	Status      task.Status     `gorm:"type:varchar(20);not null;default:'pending'"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Invoiced    bool            `gorm:"not null;default:false"`
	InvoiceID   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the row to a Task
func (m *TaskModel) ToDomain() *task.Task {
	return &task.Task{
		TenantAggregateRoot: m.ToDomainRoot(),
		ClientID:            m.ClientID,
		Description:         m.Description,
		Hours:               m.Hours,
		Date:                task.TruncateDate(m.Date),
		Status:              m.Status,
		HourlyRate:          m.HourlyRate,
		Amount:              m.Amount,
		Invoiced:            m.Invoiced,
		InvoiceID:           m.InvoiceID,
	}
}

// TaskModelFromDomain builds the row for t
func TaskModelFromDomain(t *task.Task) *TaskModel {
	m := &TaskModel{
		ClientID:    t.ClientID,
		Description: t.Description,
		Hours:       t.Hours,
		Date:        t.Date,
		Status:      t.Status,
		HourlyRate:  t.HourlyRate,
		Amount:      t.Amount,
		Invoiced:    t.Invoiced,
		InvoiceID:   t.InvoiceID,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}
