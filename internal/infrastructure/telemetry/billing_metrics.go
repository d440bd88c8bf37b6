package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("NewBillingMetrics: meter cannot be nil")

var (
	attrKind   = attribute.Key("document_kind")
	attrMethod = attribute.Key("payment_method")
	attrPrefix = attribute.Key("prefix")
)

// BillingMetrics counts issued documents, received payments and numbering collisions.
// A nil *BillingMetrics is valid and records nothing.
type BillingMetrics struct {
	documentsIssued    *Counter
	paymentsReceived   *Counter
	paymentAmountCents *Counter
	numberCollisions   *Counter
}

// NewBillingMetrics registers the billing instruments on meter
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BillingMetrics{}
	var err error
	if bm.documentsIssued, err = NewCounter(meter, "bizdocs_documents_issued_total", "Documents that received a number", "{documents}"); err != nil {
		return nil, err
	}
	if bm.paymentsReceived, err = NewCounter(meter, "bizdocs_payments_received_total", "Receipts recorded", "{receipts}"); err != nil {
		return nil, err
	}
	if bm.paymentAmountCents, err = NewCounter(meter, "bizdocs_payment_amount_total", "Amount received in cents", "{cents}"); err != nil {
		return nil, err
	}
	if bm.numberCollisions, err = NewCounter(meter, "bizdocs_number_collisions_total", "Candidate numbers found already taken", "{collisions}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordDocumentIssued counts a newly numbered quotation, invoice or receipt
func (bm *BillingMetrics) RecordDocumentIssued(ctx context.Context, kind string) {
	if bm == nil {
		return
	}
	bm.documentsIssued.Add(ctx, 1, metric.WithAttributes(attrKind.String(kind)))
}

// RecordPayment counts a receipt and its amount
func (bm *BillingMetrics) RecordPayment(ctx context.Context, method string, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := metric.WithAttributes(attrMethod.String(method))
	bm.paymentsReceived.Add(ctx, 1, attrs)
	bm.paymentAmountCents.Add(ctx, amount.Shift(2).Round(0).IntPart(), attrs)
}

// RecordNumberCollision counts a candidate number that was already in use
func (bm *BillingMetrics) RecordNumberCollision(ctx context.Context, prefix string) {
	if bm == nil {
		return
	}
	bm.numberCollisions.Add(ctx, 1, metric.WithAttributes(attrPrefix.String(prefix)))
}
