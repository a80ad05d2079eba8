package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives all events.
	EventTypes() []string
}

// EventPublisher publishes domain events after the aggregate that raised them
// has been persisted
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// NoopEventPublisher drops every event
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, ...DomainEvent) error { return nil }

// EventSource is anything that records domain events
type EventSource interface {
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// PublishPending publishes the events recorded on src and clears them
func PublishPending(ctx context.Context, p EventPublisher, src EventSource) error {
	events := src.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	src.ClearDomainEvents()
	return p.Publish(ctx, events...)
}
