package billing

import (
	"context"
	"fmt"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuotationService handles quotation business operations
type QuotationService struct {
	serviceCore
	quotations billing.QuotationRepository
	invoices   billing.InvoiceRepository
	numbers    *NumberGenerator
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotations billing.QuotationRepository,
	invoices billing.InvoiceRepository,
	numbers *NumberGenerator,
	tx TxManager,
	opts ...ServiceOption,
) *QuotationService {
	return &QuotationService{
		serviceCore: newServiceCore(tx, opts),
		quotations:  quotations,
		invoices:    invoices,
		numbers:     numbers,
	}
}

// Create validates and numbers a new quotation together with its items
func (s *QuotationService) Create(ctx context.Context, req CreateQuotationRequest) (*QuotationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", "create")
	defer span.End()

	var q *billing.Quotation
	err := s.createWithNumber(ctx, "quotation", func(ctx context.Context) error {
		now := s.now()
		var err error
		q, err = billing.NewQuotation(quotationInput(req.ClientInput, req.TaxRate, req.ValidUntil, req.Status, req.OriginalQuoteNumber), now)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			if _, err := q.AddItem(item.toDomain()); err != nil {
				return err
			}
		}
		q.Recalculate()

		number, err := s.numbers.Next(ctx, billing.PrefixQuotation, now)
		if err != nil {
			return err
		}
		if err := q.AssignNumber(number); err != nil {
			return err
		}
		return s.quotations.Save(ctx, q)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, q.ID.String(),
		telemetry.SpanAttrDocumentNumber, q.QuoteNumber,
	)
	s.log(ctx).Info("quotation created",
		zap.String("quote_number", q.QuoteNumber),
		zap.String("grand_total", q.Totals().GrandTotal.String()),
	)
	s.publish(ctx, drainEvents(q))

	resp := ToQuotationResponse(q)
	return &resp, nil
}

// GetByID retrieves a quotation with its items
func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*QuotationResponse, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToQuotationResponse(q)
	return &resp, nil
}

// GetByNumber retrieves a quotation by its quote number
func (s *QuotationService) GetByNumber(ctx context.Context, number string) (*QuotationResponse, error) {
	q, err := s.quotations.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, notFound("Quotation")
	}
	resp := ToQuotationResponse(q)
	return &resp, nil
}

// List returns one page of quotations and the total count
func (s *QuotationService) List(ctx context.Context, filter ListFilter) ([]QuotationResponse, int64, error) {
	if filter.Status != "" && !billing.QuotationStatus(filter.Status).IsValid() {
		return nil, 0, shared.NewValidationError("status", fmt.Sprintf("%q is not a valid quotation status", filter.Status))
	}
	quotations, total, err := s.quotations.FindAll(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	return ToQuotationResponses(quotations), total, nil
}

// Update replaces the editable header fields and recalculates the totals
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, req UpdateQuotationRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, "update", id, func(q *billing.Quotation) error {
		return q.UpdateDetails(quotationInput(req.ClientInput, req.TaxRate, req.ValidUntil, req.Status, req.OriginalQuoteNumber))
	})
}

// Delete removes a quotation and its items. Quotations that invoices were
// created from cannot be deleted.
func (s *QuotationService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		q, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		count, err := s.invoices.CountByQuotation(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Quotation %s is referenced by %d invoice(s) and cannot be deleted", q.QuoteNumber, count))
		}
		return s.quotations.Delete(ctx, id)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.log(ctx).Info("quotation deleted", zap.String("quotation_id", id.String()))
	return nil
}

// AddItem appends a line item and saves the recalculated quotation
func (s *QuotationService) AddItem(ctx context.Context, id uuid.UUID, req ItemRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, "add_item", id, func(q *billing.Quotation) error {
		_, err := q.AddItem(req.toDomain())
		return err
	})
}

// UpdateItem edits a line item and saves the recalculated quotation
func (s *QuotationService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req ItemRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, "update_item", id, func(q *billing.Quotation) error {
		_, err := q.UpdateItem(itemID, req.toDomain())
		return err
	})
}

// RemoveItem deletes a line item and saves the recalculated quotation
func (s *QuotationService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*QuotationResponse, error) {
	return s.mutate(ctx, "remove_item", id, func(q *billing.Quotation) error {
		return q.RemoveItem(itemID)
	})
}

// mutate loads the quotation, applies change, recalculates and saves it in
// one transaction
func (s *QuotationService) mutate(ctx context.Context, method string, id uuid.UUID, change func(*billing.Quotation) error) (*QuotationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", method)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	var q *billing.Quotation
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if q, err = s.load(ctx, id); err != nil {
			return err
		}
		if err := change(q); err != nil {
			return err
		}
		q.Recalculate()
		if err := q.Validate(); err != nil {
			return err
		}
		return s.quotations.Save(ctx, q)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.log(ctx).Debug("quotation saved",
		zap.String("quote_number", q.QuoteNumber),
		zap.String("op", method),
		zap.String("grand_total", q.Totals().GrandTotal.String()),
	)
	resp := ToQuotationResponse(q)
	return &resp, nil
}

func (s *QuotationService) load(ctx context.Context, id uuid.UUID) (*billing.Quotation, error) {
	q, err := s.quotations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, notFound("Quotation")
	}
	return q, nil
}
