package task

import (
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeTask = "Task"

const (
	EventTypeTaskCreated = "TaskCreated"
	EventTypeTaskUpdated = "TaskUpdated"
	EventTypeTaskDeleted = "TaskDeleted"
)

// TaskCreatedEvent is published when work is logged
type TaskCreatedEvent struct {
	shared.BaseDomainEvent
	TaskID   uuid.UUID       `json:"task_id"`
	ClientID uuid.UUID       `json:"client_id"`
	Hours    decimal.Decimal `json:"hours"`
	Amount   decimal.Decimal `json:"amount"`
}

func NewTaskCreatedEvent(t *Task) *TaskCreatedEvent {
	return &TaskCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskCreated, AggregateTypeTask, t.ID, t.TenantID),
		TaskID:          t.ID,
		ClientID:        t.ClientID,
		Hours:           t.Hours,
		Amount:          t.Amount,
	}
}

// TaskUpdatedEvent is published after an edit
type TaskUpdatedEvent struct {
	shared.BaseDomainEvent
	TaskID uuid.UUID       `json:"task_id"`
	Amount decimal.Decimal `json:"amount"`
	Status Status          `json:"status"`
}

func NewTaskUpdatedEvent(t *Task) *TaskUpdatedEvent {
	return &TaskUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskUpdated, AggregateTypeTask, t.ID, t.TenantID),
		TaskID:          t.ID,
		Amount:          t.Amount,
		Status:          t.Status,
	}
}

// TaskDeletedEvent is published after a task is removed
type TaskDeletedEvent struct {
	shared.BaseDomainEvent
	TaskID uuid.UUID `json:"task_id"`
}

func NewTaskDeletedEvent(t *Task) *TaskDeletedEvent {
	return &TaskDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskDeleted, AggregateTypeTask, t.ID, t.TenantID),
		TaskID:          t.ID,
	}
}
