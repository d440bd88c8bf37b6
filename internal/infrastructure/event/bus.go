package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches domain events synchronously to registered handlers.
// Handler failures are logged and never reach the publisher: events are published
// after the owning transaction has committed.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	stopped  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   log.Named("event_bus"),
	}
}

// Publish delivers each event to its handlers in registration order. A
// failing handler does not stop delivery to the others.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, e := range events {
		delivered := 0
		for _, h := range b.registry.HandlersFor(e.EventType()) {
			if err := b.dispatch(ctx, h, e); err != nil {
				b.reportFailure(ctx, e, err)
				continue
			}
			delivered++
		}
		b.logger.Debug("event delivered", zap.String("event_type", e.EventType()), zap.Int("handlers", delivered))
	}
	return nil
}

func (b *InMemoryEventBus) reportFailure(ctx context.Context, e shared.DomainEvent, err error) {
	logger.WithTraceContext(ctx, b.logger).Error("event handler failed",
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.Error(err),
	)
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start enables delivery
func (b *InMemoryEventBus) Start(context.Context) error {
	if b.stopped.Swap(false) {
		b.logger.Info("event bus resumed")
	}
	return nil
}

// Stop disables delivery; later Publish calls drop their events
func (b *InMemoryEventBus) Stop(context.Context) error {
	if !b.stopped.Swap(true) {
		b.logger.Info("event bus stopped", zap.Strings("event_types", b.registry.EventTypes()))
	}
	return nil
}

// dispatch turns a handler panic into an error
func (b *InMemoryEventBus) dispatch(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
