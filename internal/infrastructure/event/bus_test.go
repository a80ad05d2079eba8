package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), uuid.New()),
	}
}

type testHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, e)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to typed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("InvoiceCreated")
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated"), newTestEvent("InvoiceCreated")))
		assert.Equal(t, 2, handler.count())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("InvoiceCreated")
		bus.Subscribe(handler, "TaskCreated")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated")))
		assert.Equal(t, 0, handler.count())
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("TaskCreated")))
		assert.Equal(t, 1, handler.count())
	})

	t.Run("wildcard handler sees everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler()
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, 2, handler.count())
	})

	t.Run("failing handler does not stop the others", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		failing := newTestHandler("A")
		failing.err = errors.New("boom")
		panicking := newTestHandler("A")
		panicking.panicWith = "bad"
		ok := newTestHandler("A")
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(ok)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))
		assert.Equal(t, 1, ok.count())
		assert.Equal(t, 2, logs.FilterMessage("Event handler failed").Len())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("A")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("A"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("A"))

	assert.Equal(t, 1, handler.count())
}
