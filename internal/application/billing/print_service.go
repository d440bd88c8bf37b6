package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrintFormat is the output format of a printed document
type PrintFormat string

const (
	PrintFormatPDF  PrintFormat = "pdf"
	PrintFormatHTML PrintFormat = "html"
)

// ContentType returns the MIME type of the format
func (f PrintFormat) ContentType() string {
	if f == PrintFormatHTML {
		return "text/html; charset=utf-8"
	}
	return "application/pdf"
}

// ParsePrintFormat accepts pdf or html; an empty value means pdf
func ParsePrintFormat(s string) (PrintFormat, error) {
	switch f := PrintFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return PrintFormatPDF, nil
	case PrintFormatPDF, PrintFormatHTML:
		return f, nil
	}
	return "", shared.NewValidationError("format", "Must be one of: pdf html")
}

// PrintLine is an item row of a printed document
type PrintLine struct {
	Description string
	Quantity    int
	UnitPrice   valueobject.Money
	LineTotal   valueobject.Money
}

// PrintField is a labelled header value such as a due date
type PrintField struct {
	Label string
	Value string
}

// PrintAmount is a labelled money figure in the totals block
type PrintAmount struct {
	Label  string
	Amount valueobject.Money
	Strong bool
}

// PrintPayment is a receipt listed on a printed invoice
type PrintPayment struct {
	ReceiptNumber string
	Date          time.Time
	Method        string
	Amount        valueobject.Money
}

// PrintableDocument is everything a renderer needs to lay out a quotation,
// invoice or receipt
type PrintableDocument struct {
	Kind     string
	Title    string
	Number   string
	Status   string
	Date     time.Time
	Client   billing.ClientDetails
	Fields   []PrintField
	Lines    []PrintLine
	Amounts  []PrintAmount
	Payments []PrintPayment
	Notes    string
}

// Filename is the download name for the rendered document
func (d *PrintableDocument) Filename(format PrintFormat) string {
	return d.Number + "." + string(format)
}

// DocumentRenderer lays out a printable document in the given format
type DocumentRenderer interface {
	Render(ctx context.Context, doc *PrintableDocument, format PrintFormat) ([]byte, error)
}

// RenderedDocument is a printed document ready to be sent to a client
type RenderedDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PrintService prints quotations, invoices and receipts
type PrintService struct {
	serviceCore
	quotations billing.QuotationRepository
	invoices   billing.InvoiceRepository
	receipts   billing.ReceiptRepository
	renderer   DocumentRenderer
}

// NewPrintService creates a new PrintService
func NewPrintService(
	quotations billing.QuotationRepository,
	invoices billing.InvoiceRepository,
	receipts billing.ReceiptRepository,
	renderer DocumentRenderer,
	opts ...ServiceOption,
) *PrintService {
	return &PrintService{
		serviceCore: newServiceCore(nil, opts),
		quotations:  quotations,
		invoices:    invoices,
		receipts:    receipts,
		renderer:    renderer,
	}
}

// Quotation prints a quotation
func (s *PrintService) Quotation(ctx context.Context, id uuid.UUID, format PrintFormat) (*RenderedDocument, error) {
	q, err := s.quotations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, notFound("Quotation")
	}

	totals := q.Totals()
	doc := &PrintableDocument{
		Kind:   "quotation",
		Title:  "Quotation",
		Number: q.QuoteNumber,
		Status: q.Status.String(),
		Date:   q.CreatedAt,
		Client: q.Client,
		Fields: []PrintField{{Label: "Date", Value: printDate(q.CreatedAt)}},
		Lines:  make([]PrintLine, len(q.Items)),
		Amounts: []PrintAmount{
			{Label: "Subtotal", Amount: totals.Subtotal},
			{Label: "Labour", Amount: totals.LabourCost},
			{Label: taxLabel(q.TaxRate), Amount: totals.TotalTax},
			{Label: "Grand total", Amount: totals.GrandTotal, Strong: true},
		},
	}
	if q.ValidUntil != nil {
		doc.Fields = append(doc.Fields, PrintField{Label: "Valid until", Value: printDate(*q.ValidUntil)})
	}
	if q.OriginalQuoteNumber != "" {
		doc.Fields = append(doc.Fields, PrintField{Label: "Revises", Value: q.OriginalQuoteNumber})
	}
	for i, it := range q.Items {
		doc.Lines[i] = printLine(it.LineItem, it.LineTotal())
	}
	return s.render(ctx, doc, format)
}

// Invoice prints an invoice with its payment history
func (s *PrintService) Invoice(ctx context.Context, id uuid.UUID, format PrintFormat) (*RenderedDocument, error) {
	inv, err := loadInvoice(ctx, s.invoices, id)
	if err != nil {
		return nil, err
	}
	receipts, err := s.receipts.FindByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	paid := billing.SumPaid(receipts)

	totals := inv.Totals()
	doc := &PrintableDocument{
		Kind:   "invoice",
		Title:  "Invoice",
		Number: inv.InvoiceNumber,
		Status: inv.Status.String(),
		Date:   inv.CreatedAt,
		Client: inv.Client,
		Fields: []PrintField{{Label: "Date", Value: printDate(inv.CreatedAt)}},
		Lines:  make([]PrintLine, len(inv.Items)),
		Amounts: []PrintAmount{
			{Label: "Subtotal", Amount: totals.Subtotal},
			{Label: "Labour", Amount: totals.LabourCost},
			{Label: taxLabel(inv.TaxRate), Amount: totals.TotalTax},
			{Label: "Grand total", Amount: totals.GrandTotal, Strong: true},
			{Label: "Amount paid", Amount: paid},
			{Label: "Balance due", Amount: inv.Outstanding(paid), Strong: true},
		},
		Payments: make([]PrintPayment, len(receipts)),
	}
	if inv.DueDate != nil {
		doc.Fields = append(doc.Fields, PrintField{Label: "Due date", Value: printDate(*inv.DueDate)})
	}
	if inv.QuotationNumber != "" {
		doc.Fields = append(doc.Fields, PrintField{Label: "Quotation", Value: inv.QuotationNumber})
	}
	for i, it := range inv.Items {
		doc.Lines[i] = printLine(it.LineItem, it.TotalPrice)
	}
	for i, r := range receipts {
		doc.Payments[i] = PrintPayment{
			ReceiptNumber: r.ReceiptNumber,
			Date:          r.PaymentDate,
			Method:        paymentMethodLabel(r.PaymentMethod),
			Amount:        r.AmountPaid,
		}
	}
	return s.render(ctx, doc, format)
}

// Receipt prints a receipt. The balance shown is what remained due right
// after this payment, so reprints of older receipts stay the same.
func (s *PrintService) Receipt(ctx context.Context, id uuid.UUID, format PrintFormat) (*RenderedDocument, error) {
	r, err := s.receipts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("Receipt")
	}
	inv, err := loadInvoice(ctx, s.invoices, r.InvoiceID)
	if err != nil {
		return nil, err
	}
	history, err := s.receipts.FindByInvoice(ctx, r.InvoiceID)
	if err != nil {
		return nil, err
	}
	paidToDate := valueobject.Zero()
	for _, h := range history {
		paidToDate = paidToDate.Add(h.AmountPaid)
		if h.ID == r.ID {
			break
		}
	}

	doc := &PrintableDocument{
		Kind:   "receipt",
		Title:  "Receipt",
		Number: r.ReceiptNumber,
		Date:   r.PaymentDate,
		Client: inv.Client,
		Fields: []PrintField{
			{Label: "Payment date", Value: printDate(r.PaymentDate)},
			{Label: "Invoice", Value: inv.InvoiceNumber},
			{Label: "Payment method", Value: paymentMethodLabel(r.PaymentMethod)},
		},
		Amounts: []PrintAmount{
			{Label: "Invoice total", Amount: inv.Totals().GrandTotal},
			{Label: "Amount received", Amount: r.AmountPaid, Strong: true},
			{Label: "Paid to date", Amount: paidToDate},
			{Label: "Balance due", Amount: inv.Outstanding(paidToDate)},
		},
	}
	if r.Notes != nil {
		doc.Notes = *r.Notes
	}
	return s.render(ctx, doc, format)
}

func (s *PrintService) render(ctx context.Context, doc *PrintableDocument, format PrintFormat) (*RenderedDocument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, doc.Kind, "print")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentNumber, doc.Number)

	start := time.Now()
	data, err := s.renderer.Render(ctx, doc, format)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("render %s %s: %w", doc.Kind, doc.Number, err)
	}
	s.log(ctx).Debug("document printed",
		zap.String("number", doc.Number),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return &RenderedDocument{
		Filename:    doc.Filename(format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func printLine(l billing.LineItem, total valueobject.Money) PrintLine {
	return PrintLine{Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice, LineTotal: total}
}

func printDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

func taxLabel(rate decimal.Decimal) string {
	return "Tax (" + rate.String() + "%)"
}

// paymentMethodLabel turns BANK_TRANSFER into "Bank transfer"
func paymentMethodLabel(m billing.PaymentMethod) string {
	s := strings.ReplaceAll(strings.ToLower(m.String()), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
