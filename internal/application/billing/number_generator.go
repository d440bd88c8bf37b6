package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds the collision loop of a single generation
const DefaultMaxAttempts = 50

// ErrSequenceExhausted is returned when every candidate tried was taken
var ErrSequenceExhausted = shared.NewDomainError("SEQUENCE_EXHAUSTED", "No free document number could be found")

// NumberGenerator assigns <PREFIX>-<year>-<seq> numbers. The sequence
// continues from the greatest persisted number of the year and skips
// candidates that already exist.
type NumberGenerator struct {
	store       billing.NumberStore
	reserver    SequenceReserver
	maxAttempts int
	logger      *zap.Logger
	metrics     *telemetry.BillingMetrics
}

// NumberGeneratorOption configures a NumberGenerator
type NumberGeneratorOption func(*NumberGenerator)

// WithMaxAttempts bounds the collision loop
func WithMaxAttempts(n int) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithReserver draws candidates from a shared counter instead of last+1
func WithReserver(r SequenceReserver) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		g.reserver = r
	}
}

// WithGeneratorLogger sets the logger
func WithGeneratorLogger(l *zap.Logger) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		g.logger = l
	}
}

// WithGeneratorMetrics records number collisions
func WithGeneratorMetrics(m *telemetry.BillingMetrics) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		g.metrics = m
	}
}

// NewNumberGenerator creates a generator reading persisted numbers from store
func NewNumberGenerator(store billing.NumberStore, opts ...NumberGeneratorOption) *NumberGenerator {
	g := &NumberGenerator{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("numbering")
	return g
}

// Next returns the next free number of the family for the year of now.
// A persisted number that cannot be parsed aborts generation with an
// IntegrityError; it is never replaced by a default.
func (g *NumberGenerator) Next(ctx context.Context, prefix billing.Prefix, now time.Time) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "numbering", "next")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrNumberPrefix, prefix.String())

	if !prefix.IsValid() {
		return "", fmt.Errorf("unknown document prefix %q", prefix)
	}

	year := now.Year()
	yearPrefix := billing.YearPrefix(prefix, year)

	last, err := g.store.LastNumber(ctx, prefix, yearPrefix)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("failed to look up last %s number: %w", prefix, err)
	}

	floor := 0
	if last != "" {
		floor, err = billing.ParseSequence(yearPrefix, last)
		if err != nil {
			telemetry.RecordError(span, err)
			g.logIntegrity(ctx, err, last)
			return "", err
		}
	}

	candidate, err := g.candidate(ctx, yearPrefix, floor)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		number := billing.FormatNumber(prefix, year, candidate)
		taken, err := g.store.Exists(ctx, prefix, number)
		if err != nil {
			telemetry.RecordError(span, err)
			return "", fmt.Errorf("failed to check number %s: %w", number, err)
		}
		if !taken {
			telemetry.SetAttributes(span,
				telemetry.SpanAttrDocumentNumber, number,
				telemetry.SpanAttrAttempts, attempt,
			)
			return number, nil
		}

		telemetry.AddEvent(span, "number_collision", telemetry.SpanAttrDocumentNumber, number)
		g.metrics.RecordNumberCollision(ctx, prefix.String())
		g.logger.Debug("document number already taken",
			zap.String("number", number),
			zap.Int("attempt", attempt),
		)

		if candidate, err = g.candidate(ctx, yearPrefix, candidate); err != nil {
			telemetry.RecordError(span, err)
			return "", err
		}
	}

	err = fmt.Errorf("%w: %s after %d attempts", ErrSequenceExhausted, yearPrefix, g.maxAttempts)
	telemetry.RecordError(span, err)
	g.logger.Error("document number sequence exhausted",
		zap.String("prefix", yearPrefix),
		zap.Int("max_attempts", g.maxAttempts),
	)
	return "", err
}

// candidate returns the next sequence value above floor
func (g *NumberGenerator) candidate(ctx context.Context, yearPrefix string, floor int) (int, error) {
	if g.reserver == nil {
		return floor + 1, nil
	}
	next, err := g.reserver.Reserve(ctx, yearPrefix, floor)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve sequence: %w", err)
	}
	return next, nil
}

func (g *NumberGenerator) logIntegrity(ctx context.Context, err error, value string) {
	var ie *shared.IntegrityError
	if errors.As(err, &ie) {
		g.logger.Error("corrupt document number blocks numbering",
			zap.String("number", value),
			zap.String("reason", ie.Reason),
			zap.String("trace_id", telemetry.GetTraceID(ctx)),
		)
	}
}
