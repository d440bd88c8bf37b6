package billing

import (
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Event type names
const (
	EventTypeQuotationCreated = "QuotationCreated"
	EventTypeInvoiceCreated   = "InvoiceCreated"
	EventTypeInvoicePaid      = "InvoicePaid"
	EventTypeReceiptRecorded  = "ReceiptRecorded"
	EventTypeInvoiceDeleted   = "InvoiceDeleted"
)

// QuotationCreatedEvent is raised when a quotation receives its number
type QuotationCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string            `json:"quote_number"`
	ClientName  string            `json:"client_name"`
	GrandTotal  valueobject.Money `json:"grand_total"`
}

// NewQuotationCreatedEvent creates a new QuotationCreatedEvent
func NewQuotationCreatedEvent(q *Quotation) *QuotationCreatedEvent {
	return &QuotationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationCreated, "Quotation", q.ID),
		QuoteNumber:     q.QuoteNumber,
		ClientName:      q.Client.Name,
		GrandTotal:      q.Totals().GrandTotal,
	}
}

// InvoiceCreatedEvent is raised when an invoice receives its number
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber   string            `json:"invoice_number"`
	QuotationNumber string            `json:"quotation_number,omitempty"`
	ClientName      string            `json:"client_name"`
	GrandTotal      valueobject.Money `json:"grand_total"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		QuotationNumber: inv.QuotationNumber,
		ClientName:      inv.Client.Name,
		GrandTotal:      inv.Totals().GrandTotal,
	}
}

// InvoicePaidEvent is raised when receipts settle an invoice in full
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string            `json:"invoice_number"`
	GrandTotal    valueobject.Money `json:"grand_total"`
	TotalPaid     valueobject.Money `json:"total_paid"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice, totalPaid valueobject.Money) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		GrandTotal:      inv.Totals().GrandTotal,
		TotalPaid:       totalPaid,
	}
}

// ReceiptRecordedEvent is raised when a receipt is numbered and recorded
type ReceiptRecordedEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber string            `json:"receipt_number"`
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	AmountPaid    valueobject.Money `json:"amount_paid"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
}

// NewReceiptRecordedEvent creates a new ReceiptRecordedEvent
func NewReceiptRecordedEvent(r *Receipt) *ReceiptRecordedEvent {
	return &ReceiptRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptRecorded, "Receipt", r.ID),
		ReceiptNumber:   r.ReceiptNumber,
		InvoiceID:       r.InvoiceID,
		AmountPaid:      r.AmountPaid,
		PaymentMethod:   r.PaymentMethod,
	}
}

// InvoiceDeletedEvent is raised after an invoice and its receipts are removed
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber  string `json:"invoice_number"`
	StampedInvoice string `json:"stamped_invoice,omitempty"`
}

// NewInvoiceDeletedEvent creates a new InvoiceDeletedEvent
func NewInvoiceDeletedEvent(inv *Invoice) *InvoiceDeletedEvent {
	e := &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
	}
	if inv.StampedInvoice != nil {
		e.StampedInvoice = *inv.StampedInvoice
	}
	return e
}
