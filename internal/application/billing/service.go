package billing

import (
	"context"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultInsertRetries is how often a create is re-run after another writer
// took the generated number first
const DefaultInsertRetries = 3

// ServiceOption configures the behaviour shared by the billing services
type ServiceOption func(*serviceCore)

// WithClock overrides the time source used for creation dates and numbering
func WithClock(c Clock) ServiceOption {
	return func(s *serviceCore) {
		if c != nil {
			s.now = c
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *serviceCore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInsertRetries bounds how often a create is retried on a number clash
func WithInsertRetries(n int) ServiceOption {
	return func(s *serviceCore) {
		if n >= 0 {
			s.insertRetries = n
		}
	}
}

// WithEventPublisher publishes domain events after each commit
func WithEventPublisher(p shared.EventPublisher) ServiceOption {
	return func(s *serviceCore) {
		s.publisher = p
	}
}

// serviceCore holds the collaborators every billing service needs
type serviceCore struct {
	tx            TxManager
	now           Clock
	logger        *zap.Logger
	insertRetries int
	publisher     shared.EventPublisher
}

func newServiceCore(tx TxManager, opts []ServiceOption) serviceCore {
	c := serviceCore{
		tx:            tx,
		now:           utcNow,
		logger:        zap.NewNop(),
		insertRetries: DefaultInsertRetries,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// SetEventPublisher sets the event publisher
func (c *serviceCore) SetEventPublisher(p shared.EventPublisher) {
	c.publisher = p
}

// log prefers the request-scoped logger and tags it with the active trace
func (c *serviceCore) log(ctx context.Context) *zap.Logger {
	return logger.WithTraceContext(ctx, logger.FromContextOr(ctx, c.logger))
}

// createWithNumber runs fn in a transaction and re-runs it from scratch
// when the insert lost a race for its document number. fn must build a fresh
// aggregate on every call.
func (c *serviceCore) createWithNumber(ctx context.Context, kind string, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := c.tx.RunInTx(ctx, fn)
		if err == nil || !isDuplicateNumber(err) || attempt >= c.insertRetries {
			return err
		}
		c.log(ctx).Warn("document number taken concurrently, retrying",
			zap.String("kind", kind),
			zap.Int("attempt", attempt+1),
		)
	}
}

// publish sends events collected during a committed unit of work.
// Failures are logged; the write has already succeeded.
func (c *serviceCore) publish(ctx context.Context, events []shared.DomainEvent) {
	if c.publisher == nil || len(events) == 0 {
		return
	}
	if err := c.publisher.Publish(ctx, events...); err != nil {
		c.log(ctx).Error("failed to publish domain events", zap.Error(err))
	}
}

// eventSource is an aggregate that records domain events
type eventSource interface {
	TakeEvents() []shared.DomainEvent
}

// drainEvents takes the pending events off the given aggregates
func drainEvents(sources ...eventSource) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, s := range sources {
		if s == nil {
			continue
		}
		events = append(events, s.TakeEvents()...)
	}
	return events
}

func notFound(what string) error {
	return shared.NewDomainError("NOT_FOUND", what+" not found")
}
