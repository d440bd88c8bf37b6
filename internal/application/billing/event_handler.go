package billing

import (
	"context"
	"fmt"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DocumentActivityHandler records billing events in the log and in the
// document and payment metrics
type DocumentActivityHandler struct {
	logger  *zap.Logger
	metrics *telemetry.BillingMetrics
}

// NewDocumentActivityHandler creates a new handler for billing events
func NewDocumentActivityHandler(l *zap.Logger) *DocumentActivityHandler {
	return &DocumentActivityHandler{logger: l.Named("billing_events")}
}

// WithMetrics sets the metrics the handler feeds
func (h *DocumentActivityHandler) WithMetrics(m *telemetry.BillingMetrics) *DocumentActivityHandler {
	h.metrics = m
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *DocumentActivityHandler) EventTypes() []string {
	return []string{
		billing.EventTypeQuotationCreated,
		billing.EventTypeInvoiceCreated,
		billing.EventTypeReceiptRecorded,
		billing.EventTypeInvoicePaid,
	}
}

// Handle processes a billing event
func (h *DocumentActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.WithTraceContext(ctx, h.logger).With(
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)

	switch e := event.(type) {
	case *billing.QuotationCreatedEvent:
		h.metrics.RecordDocumentIssued(ctx, "quotation")
		log.Info("quotation issued",
			zap.String("quote_number", e.QuoteNumber),
			zap.String("client_name", e.ClientName),
			zap.String("grand_total", e.GrandTotal.String()),
		)
	case *billing.InvoiceCreatedEvent:
		h.metrics.RecordDocumentIssued(ctx, "invoice")
		log.Info("invoice issued",
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("quotation_number", e.QuotationNumber),
			zap.String("client_name", e.ClientName),
			zap.String("grand_total", e.GrandTotal.String()),
		)
	case *billing.ReceiptRecordedEvent:
		h.metrics.RecordDocumentIssued(ctx, "receipt")
		h.metrics.RecordPayment(ctx, e.PaymentMethod.String(), e.AmountPaid.Amount())
		log.Info("payment received",
			zap.String("receipt_number", e.ReceiptNumber),
			zap.String("invoice_id", e.InvoiceID.String()),
			zap.String("amount_paid", e.AmountPaid.String()),
			zap.String("payment_method", e.PaymentMethod.String()),
		)
	case *billing.InvoicePaidEvent:
		log.Info("invoice settled",
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("grand_total", e.GrandTotal.String()),
			zap.String("total_paid", e.TotalPaid.String()),
		)
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

var _ shared.EventHandler = (*DocumentActivityHandler)(nil)
