package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService handles invoice business operations
type InvoiceService struct {
	serviceCore
	invoices   billing.InvoiceRepository
	quotations billing.QuotationRepository
	receipts   billing.ReceiptRepository
	numbers    *NumberGenerator
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices billing.InvoiceRepository,
	quotations billing.QuotationRepository,
	receipts billing.ReceiptRepository,
	numbers *NumberGenerator,
	tx TxManager,
	opts ...ServiceOption,
) *InvoiceService {
	return &InvoiceService{
		serviceCore: newServiceCore(tx, opts),
		invoices:    invoices,
		quotations:  quotations,
		receipts:    receipts,
		numbers:     numbers,
	}
}

// Create creates and numbers a standalone invoice with its items
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	in := billing.InvoiceInput{Client: req.ClientInput.toDomain(), TaxRate: req.TaxRate, DueDate: req.DueDate}
	inv, err := s.create(ctx, func(_ context.Context, now time.Time) (*billing.Invoice, error) {
		inv, err := billing.NewStandaloneInvoice(in, now)
		if err != nil {
			return nil, err
		}
		for _, item := range req.Items {
			if _, err := inv.AddItem(item.toDomain()); err != nil {
				return nil, err
			}
		}
		return inv, nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentNumber, inv.InvoiceNumber)

	resp := ToInvoiceResponse(inv, valueobject.Zero())
	return &resp, nil
}

// CreateFromQuotation snapshots a quotation's client, tax rate, totals and
// items into a new invoice. Later quotation edits do not reach the invoice.
func (s *InvoiceService) CreateFromQuotation(ctx context.Context, quotationID uuid.UUID, req CreateInvoiceFromQuotationRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create_from_quotation")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, quotationID.String())

	inv, err := s.create(ctx, func(ctx context.Context, now time.Time) (*billing.Invoice, error) {
		q, err := s.quotations.FindByID(ctx, quotationID)
		if err != nil {
			return nil, err
		}
		if q == nil {
			return nil, notFound("Quotation")
		}
		return billing.NewInvoiceFromQuotation(q, req.DueDate, now)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentNumber, inv.InvoiceNumber)

	resp := ToInvoiceResponse(inv, valueobject.Zero())
	return &resp, nil
}

// create numbers and saves the invoice produced by build, retrying with a
// fresh invoice when another writer took the number first
func (s *InvoiceService) create(ctx context.Context, build func(ctx context.Context, now time.Time) (*billing.Invoice, error)) (*billing.Invoice, error) {
	var inv *billing.Invoice
	err := s.createWithNumber(ctx, "invoice", func(ctx context.Context) error {
		now := s.now()
		var err error
		if inv, err = build(ctx, now); err != nil {
			return err
		}
		inv.Recalculate()

		number, err := s.numbers.Next(ctx, billing.PrefixInvoice, now)
		if err != nil {
			return err
		}
		if err := inv.AssignNumber(number); err != nil {
			return err
		}
		return s.invoices.Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("invoice created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("quotation_number", inv.QuotationNumber),
		zap.String("grand_total", inv.Totals().GrandTotal.String()),
	)
	s.publish(ctx, drainEvents(inv))
	return inv, nil
}

// GetByID retrieves an invoice with its items and payment position
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	paid, err := s.receipts.SumPaidByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, paid)
	return &resp, nil
}

// GetByNumber retrieves an invoice by its invoice number
func (s *InvoiceService) GetByNumber(ctx context.Context, number string) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, notFound("Invoice")
	}
	paid, err := s.receipts.SumPaidByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, paid)
	return &resp, nil
}

// List returns one page of invoices and the total count
func (s *InvoiceService) List(ctx context.Context, filter ListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Status != "" && !billing.InvoiceStatus(filter.Status).IsValid() {
		return nil, 0, shared.NewValidationError("status", fmt.Sprintf("%q is not a valid invoice status", filter.Status))
	}
	invoices, total, err := s.invoices.FindAll(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		paid, err := s.receipts.SumPaidByInvoice(ctx, invoices[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i] = ToInvoiceResponse(&invoices[i], paid)
	}
	return out, total, nil
}

// Update edits the invoice header. Invoices created from a quotation only
// accept a new due date.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	in := billing.InvoiceInput{Client: req.ClientInput.toDomain(), TaxRate: req.TaxRate, DueDate: req.DueDate}
	return s.mutate(ctx, "update", id, func(inv *billing.Invoice, _ valueobject.Money) error {
		return inv.UpdateDetails(in)
	})
}

// SetStatus applies a manual status. Paid and Partially Paid come only
// from receipts, and no manual change is accepted once money was received.
func (s *InvoiceService) SetStatus(ctx context.Context, id uuid.UUID, req SetInvoiceStatusRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, "set_status", id, func(inv *billing.Invoice, paid valueobject.Money) error {
		return inv.SetStatus(billing.InvoiceStatus(req.Status), paid)
	})
}

// SetStampedInvoice records or clears the reference to the stamped copy
func (s *InvoiceService) SetStampedInvoice(ctx context.Context, id uuid.UUID, req SetStampedInvoiceRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, "set_stamped", id, func(inv *billing.Invoice, _ valueobject.Money) error {
		inv.SetStampedInvoice(req.StampedInvoice)
		return nil
	})
}

// AddItem appends a line to a standalone invoice
func (s *InvoiceService) AddItem(ctx context.Context, id uuid.UUID, req ItemRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, "add_item", id, func(inv *billing.Invoice, _ valueobject.Money) error {
		_, err := inv.AddItem(req.toDomain())
		return err
	})
}

// UpdateItem edits a line of a standalone invoice
func (s *InvoiceService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req ItemRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, "update_item", id, func(inv *billing.Invoice, _ valueobject.Money) error {
		_, err := inv.UpdateItem(itemID, req.toDomain())
		return err
	})
}

// RemoveItem deletes a line from a standalone invoice
func (s *InvoiceService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, "remove_item", id, func(inv *billing.Invoice, _ valueobject.Money) error {
		return inv.RemoveItem(itemID)
	})
}

// Delete removes an invoice together with its items and receipts
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	var inv *billing.Invoice
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if inv, err = s.load(ctx, id); err != nil {
			return err
		}
		return s.invoices.Delete(ctx, id)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.log(ctx).Info("invoice deleted",
		zap.String("invoice_id", id.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
	)
	s.publish(ctx, []shared.DomainEvent{billing.NewInvoiceDeletedEvent(inv)})
	return nil
}

// ListReceipts lists the receipts recorded against an invoice
func (s *InvoiceService) ListReceipts(ctx context.Context, id uuid.UUID) ([]ReceiptResponse, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	receipts, err := s.receipts.FindByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		out[i] = ToReceiptResponse(&receipts[i])
	}
	return out, nil
}

// mutate loads the invoice and what has been paid on it, applies change,
// recalculates the totals and payment status and saves, all in one transaction
func (s *InvoiceService) mutate(ctx context.Context, method string, id uuid.UUID, change func(*billing.Invoice, valueobject.Money) error) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", method)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	var (
		inv  *billing.Invoice
		paid valueobject.Money
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if inv, err = s.load(ctx, id); err != nil {
			return err
		}
		if paid, err = s.receipts.SumPaidByInvoice(ctx, id); err != nil {
			return err
		}
		if err := change(inv, paid); err != nil {
			return err
		}
		return saveInvoice(ctx, s.invoices, inv, paid)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceStatus, inv.Status.String())
	s.log(ctx).Debug("invoice saved",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("op", method),
		zap.String("status", inv.Status.String()),
	)
	s.publish(ctx, drainEvents(inv))
	resp := ToInvoiceResponse(inv, paid)
	return &resp, nil
}

func (s *InvoiceService) load(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return loadInvoice(ctx, s.invoices, id)
}

func loadInvoice(ctx context.Context, repo billing.InvoiceRepository, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, notFound("Invoice")
	}
	return inv, nil
}

// saveInvoice is the invoice save sequence: refresh item totals, recompute
// the totals of standalone invoices, re-derive the payment status, validate
// and persist
func saveInvoice(ctx context.Context, repo billing.InvoiceRepository, inv *billing.Invoice, paid valueobject.Money) error {
	inv.Recalculate()
	inv.ApplyPayments(paid)
	if err := inv.Validate(); err != nil {
		return err
	}
	return repo.Save(ctx, inv)
}
