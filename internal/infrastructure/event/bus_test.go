package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New()),
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	err, p := h.err, h.panicWith
	h.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to typed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		paid := newTestHandler("InvoicePaid")
		other := newTestHandler("ReceiptRecorded")
		bus.Subscribe(paid)
		bus.Subscribe(other)

		e1, e2 := newTestEvent("InvoicePaid"), newTestEvent("InvoicePaid")
		require.NoError(t, bus.Publish(context.Background(), e1, e2))

		assert.Equal(t, 2, paid.count())
		assert.Equal(t, 0, other.count())
		assert.Same(t, e1, paid.handled[0])
	})

	t.Run("explicit types override handler types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler("InvoicePaid")
		bus.Subscribe(h, "InvoiceCreated")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoicePaid"), newTestEvent("InvoiceCreated")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		all := newTestHandler()
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("QuotationCreated"), newTestEvent("InvoicePaid")))
		assert.Equal(t, 2, all.count())
	})

	t.Run("handler error is logged and others still run", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		failing := newTestHandler("InvoicePaid")
		failing.err = errors.New("smtp down")
		next := newTestHandler("InvoicePaid")
		bus.Subscribe(failing)
		bus.Subscribe(next)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoicePaid")))
		assert.Equal(t, 1, next.count())

		entries := logs.FilterMessage("event handler failed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "InvoicePaid", entries[0].ContextMap()["event_type"])
	})

	t.Run("handler panic is recovered", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		panicking := newTestHandler("InvoicePaid")
		panicking.panicWith = "boom"
		next := newTestHandler("InvoicePaid")
		bus.Subscribe(panicking)
		bus.Subscribe(next)

		require.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), newTestEvent("InvoicePaid"))
		})
		assert.Equal(t, 1, next.count())
		assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("InvoicePaid")
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("InvoicePaid"))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("InvoicePaid"))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bus := NewInMemoryEventBus(zap.New(core))
	h := newTestHandler("InvoicePaid")
	bus.Subscribe(h)
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("InvoicePaid")))
	assert.Equal(t, 1, h.count())

	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("InvoicePaid")))
	assert.Equal(t, 1, h.count())
	assert.Equal(t, 1, logs.FilterMessage("event bus stopped, dropping events").Len())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("InvoicePaid")))
	assert.Equal(t, 2, h.count())
}
