package billing

import (
	"context"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// QuotationRepository persists quotations together with their items.
// Find methods return (nil, nil) when nothing matches.
type QuotationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Quotation, error)
	FindByNumber(ctx context.Context, number string) (*Quotation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Quotation, int64, error)
	// Save upserts the quotation header and replaces its item set
	Save(ctx context.Context, q *Quotation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceRepository persists invoices together with their items
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, int64, error)
	CountByQuotation(ctx context.Context, quotationID uuid.UUID) (int64, error)
	Save(ctx context.Context, inv *Invoice) error
	// Delete removes the invoice along with its items and receipts
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReceiptRepository persists receipts. Receipts are immutable, so there is no Update.
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Receipt, error)
	SumPaidByInvoice(ctx context.Context, invoiceID uuid.UUID) (valueobject.Money, error)
	Create(ctx context.Context, r *Receipt) error
}

// NumberStore answers the questions the sequence generator asks of persisted numbers
type NumberStore interface {
	// LastNumber returns the lexicographically greatest number starting with
	// yearPrefix, or "" when none exists
	LastNumber(ctx context.Context, prefix Prefix, yearPrefix string) (string, error)
	// Exists reports whether a document of the family already uses number
	Exists(ctx context.Context, prefix Prefix, number string) (bool, error)
}
