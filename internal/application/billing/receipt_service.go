package billing

import (
	"context"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptService records payments against invoices
type ReceiptService struct {
	serviceCore
	receipts billing.ReceiptRepository
	invoices billing.InvoiceRepository
	numbers  *NumberGenerator
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	receipts billing.ReceiptRepository,
	invoices billing.InvoiceRepository,
	numbers *NumberGenerator,
	tx TxManager,
	opts ...ServiceOption,
) *ReceiptService {
	return &ReceiptService{
		serviceCore: newServiceCore(tx, opts),
		receipts:    receipts,
		invoices:    invoices,
		numbers:     numbers,
	}
}

// Record validates a payment against the outstanding balance computed from
// persisted receipts, numbers and stores the receipt, then re-derives and
// saves the invoice payment status. All of it commits or none of it does.
func (s *ReceiptService) Record(ctx context.Context, invoiceID uuid.UUID, req RecordReceiptRequest) (*RecordReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, invoiceID.String(),
		telemetry.SpanAttrAmount, req.AmountPaid.String(),
		telemetry.SpanAttrPaymentMethod, req.PaymentMethod,
	)

	var (
		inv     *billing.Invoice
		receipt *billing.Receipt
		paid    valueobject.Money
	)
	err := s.createWithNumber(ctx, "receipt", func(ctx context.Context) error {
		var err error
		if inv, err = loadInvoice(ctx, s.invoices, invoiceID); err != nil {
			return err
		}
		previouslyPaid, err := s.receipts.SumPaidByInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}

		now := s.now()
		receipt, err = billing.NewReceipt(inv, req.toDomain(), inv.Outstanding(previouslyPaid), now)
		if err != nil {
			return err
		}
		number, err := s.numbers.Next(ctx, billing.PrefixReceipt, now)
		if err != nil {
			return err
		}
		if err := receipt.AssignNumber(number); err != nil {
			return err
		}
		if err := s.receipts.Create(ctx, receipt); err != nil {
			return err
		}

		paid = previouslyPaid.Add(receipt.AmountPaid)
		return saveInvoice(ctx, s.invoices, inv, paid)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentNumber, receipt.ReceiptNumber,
		telemetry.SpanAttrInvoiceStatus, inv.Status.String(),
	)
	s.log(ctx).Info("receipt recorded",
		zap.String("receipt_number", receipt.ReceiptNumber),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("amount_paid", receipt.AmountPaid.String()),
		zap.String("invoice_status", inv.Status.String()),
	)
	s.publish(ctx, drainEvents(receipt, inv))

	return &RecordReceiptResponse{
		Receipt: ToReceiptResponse(receipt),
		Invoice: ToInvoiceResponse(inv, paid),
	}, nil
}

// GetByID retrieves a receipt
func (s *ReceiptService) GetByID(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	r, err := s.receipts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("Receipt")
	}
	resp := ToReceiptResponse(r)
	return &resp, nil
}
