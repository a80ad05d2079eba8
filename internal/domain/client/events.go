package client

import (
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
)

const AggregateTypeClient = "Client"

const (
	EventTypeClientCreated       = "ClientCreated"
	EventTypeClientUpdated       = "ClientUpdated"
	EventTypeClientStatusChanged = "ClientStatusChanged"
	EventTypeClientDeleted       = "ClientDeleted"
)

// ClientCreatedEvent is published when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
}

func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		Name:            c.Name,
		Email:           c.Email,
	}
}

// ClientUpdatedEvent is published when client details change
type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID `json:"client_id"`
	RateChanged bool      `json:"rate_changed"`
}

func NewClientUpdatedEvent(c *Client, rateChanged bool) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientUpdated, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		RateChanged:     rateChanged,
	}
}

// ClientStatusChangedEvent is published on archive and reactivation
type ClientStatusChangedEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID `json:"client_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

func NewClientStatusChangedEvent(c *Client, old Status) *ClientStatusChangedEvent {
	return &ClientStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientStatusChanged, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		OldStatus:       old,
		NewStatus:       c.Status,
	}
}

// ClientDeletedEvent is published after a hard delete
type ClientDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
}

func NewClientDeletedEvent(c *Client) *ClientDeletedEvent {
	return &ClientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeleted, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
	}
}
