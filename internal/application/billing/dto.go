package billing

import (
	"io"
	"time"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Shared DTOs ====================

// ClientInput carries the client block of a quotation or invoice request
type ClientInput struct {
	ClientName        string `json:"client_name" binding:"required,max=100"`
	ClientEmail       string `json:"client_email" binding:"required,email,max=254"`
	ClientAddress     string `json:"client_address" binding:"required"`
	ClientPhoneNumber string `json:"client_phone_number" binding:"required,max=32"`
}

func (c ClientInput) toDomain() billing.ClientDetails {
	return billing.ClientDetails{
		Name:        c.ClientName,
		Email:       c.ClientEmail,
		Address:     c.ClientAddress,
		PhoneNumber: c.ClientPhoneNumber,
	}
}

// ItemRequest adds or replaces a line item
type ItemRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

func (r ItemRequest) toDomain() billing.ItemInput {
	return billing.ItemInput{
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   valueobject.NewMoney(r.UnitPrice),
	}
}

// ItemResponse is a line item as returned to clients
type ItemResponse struct {
	ID          uuid.UUID         `json:"id"`
	Description string            `json:"description"`
	Quantity    int               `json:"quantity"`
	UnitPrice   valueobject.Money `json:"unit_price"`
	LineTotal   valueobject.Money `json:"line_total"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toItemResponse(l billing.LineItem, total valueobject.Money) ItemResponse {
	return ItemResponse{
		ID:          l.ID,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		LineTotal:   total,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// TotalsResponse carries the derived figures. Labour cost is exact and may
// carry more than two places.
type TotalsResponse struct {
	Subtotal   valueobject.Money `json:"subtotal"`
	LabourCost decimal.Decimal   `json:"labour_cost"`
	TotalTax   valueobject.Money `json:"total_tax"`
	GrandTotal valueobject.Money `json:"grand_total"`
}

func toTotalsResponse(t billing.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal:   t.Subtotal,
		LabourCost: t.LabourCost.Amount(),
		TotalTax:   t.TotalTax,
		GrandTotal: t.GrandTotal,
	}
}

// ListFilter is the paging and filtering shared by document listings
type ListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search   string `form:"search"`
	Status   string `form:"status"`
}

func (f ListFilter) toDomain() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	return filter
}

// Paging returns the effective page and page size after defaults
func (f ListFilter) Paging() (page, pageSize int) {
	filter := f.toDomain()
	return filter.Page, filter.PageSize
}

// ==================== Quotation DTOs ====================

// CreateQuotationRequest creates a quotation, optionally with its first items
type CreateQuotationRequest struct {
	ClientInput
	TaxRate             decimal.Decimal `json:"tax_rate"`
	ValidUntil          *time.Time      `json:"valid_until"`
	Status              string          `json:"status"`
	OriginalQuoteNumber string          `json:"original_quote_number" binding:"max=32"`
	Items               []ItemRequest   `json:"items" binding:"dive"`
}

// UpdateQuotationRequest replaces the editable header fields of a quotation
type UpdateQuotationRequest struct {
	ClientInput
	TaxRate             decimal.Decimal `json:"tax_rate"`
	ValidUntil          *time.Time      `json:"valid_until"`
	Status              string          `json:"status"`
	OriginalQuoteNumber string          `json:"original_quote_number" binding:"max=32"`
}

func quotationInput(c ClientInput, taxRate decimal.Decimal, validUntil *time.Time, status, original string) billing.QuotationInput {
	return billing.QuotationInput{
		Client:              c.toDomain(),
		TaxRate:             taxRate,
		ValidUntil:          validUntil,
		Status:              billing.QuotationStatus(status),
		OriginalQuoteNumber: original,
	}
}

// QuotationResponse is a quotation with its items and totals
type QuotationResponse struct {
	ID                  uuid.UUID       `json:"id"`
	QuoteNumber         string          `json:"quote_number"`
	OriginalQuoteNumber string          `json:"original_quote_number,omitempty"`
	ClientName          string          `json:"client_name"`
	ClientEmail         string          `json:"client_email"`
	ClientAddress       string          `json:"client_address"`
	ClientPhoneNumber   string          `json:"client_phone_number"`
	Status              string          `json:"status"`
	DateCreated         time.Time       `json:"date_created"`
	ValidUntil          *time.Time      `json:"valid_until,omitempty"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	TotalsResponse
	Items     []ItemResponse `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ToQuotationResponse converts a domain quotation
func ToQuotationResponse(q *billing.Quotation) QuotationResponse {
	items := make([]ItemResponse, len(q.Items))
	for i, it := range q.Items {
		items[i] = toItemResponse(it.LineItem, it.LineTotal())
	}
	return QuotationResponse{
		ID:                  q.ID,
		QuoteNumber:         q.QuoteNumber,
		OriginalQuoteNumber: q.OriginalQuoteNumber,
		ClientName:          q.Client.Name,
		ClientEmail:         q.Client.Email,
		ClientAddress:       q.Client.Address,
		ClientPhoneNumber:   q.Client.PhoneNumber,
		Status:              q.Status.String(),
		DateCreated:         q.CreatedAt,
		ValidUntil:          q.ValidUntil,
		TaxRate:             q.TaxRate,
		TotalsResponse:      toTotalsResponse(q.Totals()),
		Items:               items,
		UpdatedAt:           q.UpdatedAt,
	}
}

// ToQuotationResponses converts a slice of domain quotations
func ToQuotationResponses(qs []billing.Quotation) []QuotationResponse {
	out := make([]QuotationResponse, len(qs))
	for i := range qs {
		out[i] = ToQuotationResponse(&qs[i])
	}
	return out
}

// ==================== Invoice DTOs ====================

// CreateInvoiceRequest creates a standalone invoice
type CreateInvoiceRequest struct {
	ClientInput
	TaxRate decimal.Decimal `json:"tax_rate"`
	DueDate *time.Time      `json:"due_date"`
	Items   []ItemRequest   `json:"items" binding:"dive"`
}

// CreateInvoiceFromQuotationRequest snapshots a quotation into a new invoice
type CreateInvoiceFromQuotationRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// UpdateInvoiceRequest replaces the editable header fields of an invoice.
// Invoices created from a quotation only accept a new due date.
type UpdateInvoiceRequest struct {
	ClientInput
	TaxRate decimal.Decimal `json:"tax_rate"`
	DueDate *time.Time      `json:"due_date"`
}

// SetInvoiceStatusRequest applies a manual status
type SetInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStampedInvoiceRequest stores a reference to the scanned stamped copy.
// An empty reference clears it.
type SetStampedInvoiceRequest struct {
	StampedInvoice string `json:"stamped_invoice" binding:"max=255"`
}

// ScanUpload is a scanned stamped invoice as received from a client
type ScanUpload struct {
	Filename string
	Body     io.Reader
}

// StampedScanLink points at the stamped copy of an invoice. Scans held in
// scan storage get a presigned URL that expires; other references are
// returned as stored.
type StampedScanLink struct {
	InvoiceNumber  string     `json:"invoice_number"`
	StampedInvoice string     `json:"stamped_invoice"`
	URL            string     `json:"url"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// InvoiceResponse is an invoice with its items, totals and payment position
type InvoiceResponse struct {
	ID                uuid.UUID       `json:"id"`
	InvoiceNumber     string          `json:"invoice_number"`
	QuotationID       *uuid.UUID      `json:"quotation_id,omitempty"`
	QuotationNumber   string          `json:"quotation_number,omitempty"`
	ClientName        string          `json:"client_name"`
	ClientEmail       string          `json:"client_email"`
	ClientAddress     string          `json:"client_address"`
	ClientPhoneNumber string          `json:"client_phone_number"`
	Status            string          `json:"status"`
	DateCreated       time.Time       `json:"date_created"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	StampedInvoice    *string         `json:"stamped_invoice,omitempty"`
	TotalsResponse
	AmountPaid  valueobject.Money `json:"amount_paid"`
	Outstanding valueobject.Money `json:"outstanding"`
	Items       []ItemResponse    `json:"items"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice given what has been paid on it
func ToInvoiceResponse(inv *billing.Invoice, paid valueobject.Money) InvoiceResponse {
	items := make([]ItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = toItemResponse(it.LineItem, it.TotalPrice)
	}
	return InvoiceResponse{
		ID:                inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		QuotationID:       inv.QuotationID,
		QuotationNumber:   inv.QuotationNumber,
		ClientName:        inv.Client.Name,
		ClientEmail:       inv.Client.Email,
		ClientAddress:     inv.Client.Address,
		ClientPhoneNumber: inv.Client.PhoneNumber,
		Status:            inv.Status.String(),
		DateCreated:       inv.CreatedAt,
		DueDate:           inv.DueDate,
		TaxRate:           inv.TaxRate,
		StampedInvoice:    inv.StampedInvoice,
		TotalsResponse:    toTotalsResponse(inv.Totals()),
		AmountPaid:        paid,
		Outstanding:       inv.Outstanding(paid),
		Items:             items,
		UpdatedAt:         inv.UpdatedAt,
	}
}

// ==================== Receipt DTOs ====================

// RecordReceiptRequest records a payment against an invoice
type RecordReceiptRequest struct {
	AmountPaid    decimal.Decimal `json:"amount_paid" binding:"required"`
	PaymentDate   *time.Time      `json:"payment_date"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	Notes         string          `json:"notes" binding:"max=2000"`
}

func (r RecordReceiptRequest) toDomain() billing.ReceiptInput {
	in := billing.ReceiptInput{
		AmountPaid:    valueobject.NewMoney(r.AmountPaid),
		PaymentMethod: billing.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
	}
	if r.PaymentDate != nil {
		in.PaymentDate = *r.PaymentDate
	}
	return in
}

// ReceiptResponse is a recorded payment
type ReceiptResponse struct {
	ID            uuid.UUID         `json:"id"`
	ReceiptNumber string            `json:"receipt_number"`
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	AmountPaid    valueobject.Money `json:"amount_paid"`
	PaymentDate   time.Time         `json:"payment_date"`
	PaymentMethod string            `json:"payment_method"`
	Notes         *string           `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ToReceiptResponse converts a domain receipt
func ToReceiptResponse(r *billing.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:            r.ID,
		ReceiptNumber: r.ReceiptNumber,
		InvoiceID:     r.InvoiceID,
		AmountPaid:    r.AmountPaid,
		PaymentDate:   r.PaymentDate,
		PaymentMethod: r.PaymentMethod.String(),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}

// RecordReceiptResponse is the new receipt plus the invoice it settled against
type RecordReceiptResponse struct {
	Receipt ReceiptResponse `json:"receipt"`
	Invoice InvoiceResponse `json:"invoice"`
}
