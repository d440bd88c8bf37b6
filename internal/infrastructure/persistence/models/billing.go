package models

import (
	"time"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientColumns is the embedded client block shared by quotations and invoices
type ClientColumns struct {
	ClientName        string `gorm:"column:client_name;type:varchar(100);not null;index"`
	ClientEmail       string `gorm:"column:client_email;type:varchar(254);not null"`
	ClientAddress     string `gorm:"column:client_address;type:text;not null"`
	ClientPhoneNumber string `gorm:"column:client_phone_number;type:varchar(32);not null"`
}

func clientColumns(c billing.ClientDetails) ClientColumns {
	return ClientColumns{
		ClientName:        c.Name,
		ClientEmail:       c.Email,
		ClientAddress:     c.Address,
		ClientPhoneNumber: c.PhoneNumber,
	}
}

func (c ClientColumns) toDomain() billing.ClientDetails {
	return billing.ClientDetails{
		Name:        c.ClientName,
		Email:       c.ClientEmail,
		Address:     c.ClientAddress,
		PhoneNumber: c.ClientPhoneNumber,
	}
}

// TotalsColumns stores computed document figures. labour_cost keeps four
// places because it is never rounded.
type TotalsColumns struct {
	Subtotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LabourCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTax   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

func totalsColumns(t billing.Totals) TotalsColumns {
	return TotalsColumns{
		Subtotal:   t.Subtotal.Amount(),
		LabourCost: t.LabourCost.Amount(),
		TotalTax:   t.TotalTax.Amount(),
		GrandTotal: t.GrandTotal.Amount(),
	}
}

func (c TotalsColumns) toDomain() billing.Totals {
	return billing.Totals{
		Subtotal:   valueobject.NewMoney(c.Subtotal),
		LabourCost: valueobject.NewMoney(c.LabourCost),
		TotalTax:   valueobject.NewMoney(c.TotalTax),
		GrandTotal: valueobject.NewMoney(c.GrandTotal),
	}
}

// LineItemColumns holds the fields common to quotation and invoice items
type LineItemColumns struct {
	Description string          `gorm:"type:varchar(255);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

func lineItemColumns(l billing.LineItem) LineItemColumns {
	return LineItemColumns{
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice.Amount(),
	}
}

func (c LineItemColumns) toDomain(base shared.BaseEntity) billing.LineItem {
	return billing.LineItem{
		BaseEntity:  base,
		Description: c.Description,
		Quantity:    c.Quantity,
		UnitPrice:   valueobject.NewMoney(c.UnitPrice),
	}
}

// QuotationModel is the persistence model for the Quotation aggregate root.
type QuotationModel struct {
	RootRow
	QuoteNumber         string               `gorm:"type:varchar(32);not null;uniqueIndex:idx_quotations_quote_number"`
	OriginalQuoteNumber *string              `gorm:"type:varchar(32);index"`
	Client              ClientColumns        `gorm:"embedded"`
	Status              string               `gorm:"type:varchar(20);not null;default:'Draft';index"`
	ValidUntil          *time.Time           `gorm:"type:date"`
	TaxRate             decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0"`
	Totals              TotalsColumns        `gorm:"embedded"`
	Items               []QuotationItemModel `gorm:"foreignKey:QuotationID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// QuotationItemModel is the persistence model for a quotation line
type QuotationItemModel struct {
	Row
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineItemColumns
}

// TableName returns the table name for GORM
func (QuotationItemModel) TableName() string {
	return "quotation_items"
}

// FromDomain populates the persistence model from a domain Quotation.
// Totals are written as last recalculated.
func (m *QuotationModel) FromDomain(q *billing.Quotation) {
	m.RootRow = rootRowOf(q.BaseAggregateRoot)
	m.QuoteNumber = q.QuoteNumber
	m.OriginalQuoteNumber = nil
	if q.OriginalQuoteNumber != "" {
		orig := q.OriginalQuoteNumber
		m.OriginalQuoteNumber = &orig
	}
	m.Client = clientColumns(q.Client)
	m.Status = string(q.Status)
	m.ValidUntil = q.ValidUntil
	m.TaxRate = q.TaxRate
	m.Totals = totalsColumns(q.Totals())
	m.Items = make([]QuotationItemModel, len(q.Items))
	for i, it := range q.Items {
		m.Items[i] = QuotationItemModel{Row: rowOf(it.BaseEntity), QuotationID: q.ID, LineItemColumns: lineItemColumns(it.LineItem)}
	}
}

// ToDomain converts the persistence model to a domain Quotation. Totals are
// recomputed from the loaded items rather than trusted from the row.
func (m *QuotationModel) ToDomain() *billing.Quotation {
	q := &billing.Quotation{
		BaseAggregateRoot: m.root(),
		QuoteNumber:       m.QuoteNumber,
		Client:            m.Client.toDomain(),
		Status:            billing.QuotationStatus(m.Status),
		ValidUntil:        m.ValidUntil,
		TaxRate:           m.TaxRate,
		Items:             make([]billing.QuotationItem, len(m.Items)),
	}
	if m.OriginalQuoteNumber != nil {
		q.OriginalQuoteNumber = *m.OriginalQuoteNumber
	}
	for i, it := range m.Items {
		q.Items[i] = billing.QuotationItem{
			LineItem:    it.LineItemColumns.toDomain(it.entity()),
			QuotationID: it.QuotationID,
		}
	}
	q.Recalculate()
	return q
}

// QuotationModelFromDomain creates a new persistence model from a domain Quotation.
func QuotationModelFromDomain(q *billing.Quotation) *QuotationModel {
	m := &QuotationModel{}
	m.FromDomain(q)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	RootRow
	InvoiceNumber   string             `gorm:"type:varchar(32);not null;uniqueIndex:idx_invoices_invoice_number"`
	QuotationID     *uuid.UUID         `gorm:"type:uuid;index"`
	QuotationNumber *string            `gorm:"type:varchar(32)"`
	Client          ClientColumns      `gorm:"embedded"`
	Status          string             `gorm:"type:varchar(20);not null;default:'Unpaid';index"`
	DueDate         *time.Time         `gorm:"type:date;index"`
	TaxRate         decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0"`
	StampedInvoice  *string            `gorm:"type:varchar(255)"`
	Totals          TotalsColumns      `gorm:"embedded"`
	Items           []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is the persistence model for an invoice line
type InvoiceItemModel struct {
	Row
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineItemColumns
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.RootRow = rootRowOf(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.QuotationID = inv.QuotationID
	m.QuotationNumber = nil
	if inv.QuotationNumber != "" {
		num := inv.QuotationNumber
		m.QuotationNumber = &num
	}
	m.Client = clientColumns(inv.Client)
	m.Status = string(inv.Status)
	m.DueDate = inv.DueDate
	m.TaxRate = inv.TaxRate
	m.StampedInvoice = inv.StampedInvoice
	m.Totals = totalsColumns(inv.Totals())
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, it := range inv.Items {
		m.Items[i] = InvoiceItemModel{
			Row:             rowOf(it.BaseEntity),
			InvoiceID:       inv.ID,
			LineItemColumns: lineItemColumns(it.LineItem),
			TotalPrice:      it.TotalPrice.Amount(),
		}
	}
}

// ToDomain converts the persistence model to a domain Invoice. A linked
// invoice gets its stored snapshot back; a standalone one is recalculated.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		BaseAggregateRoot: m.root(),
		InvoiceNumber:     m.InvoiceNumber,
		QuotationID:       m.QuotationID,
		Client:            m.Client.toDomain(),
		Status:            billing.InvoiceStatus(m.Status),
		DueDate:           m.DueDate,
		TaxRate:           m.TaxRate,
		StampedInvoice:    m.StampedInvoice,
		Items:             make([]billing.InvoiceItem, len(m.Items)),
	}
	if m.QuotationNumber != nil {
		inv.QuotationNumber = *m.QuotationNumber
	}
	for i, it := range m.Items {
		inv.Items[i] = billing.InvoiceItem{
			LineItem:   it.LineItemColumns.toDomain(it.entity()),
			InvoiceID:  it.InvoiceID,
			TotalPrice: valueobject.NewMoney(it.TotalPrice),
		}
	}
	if inv.IsLinked() {
		inv.RestoreSnapshot(m.Totals.toDomain())
	} else {
		inv.Recalculate()
	}
	return inv
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ReceiptModel is the persistence model for the Receipt aggregate root.
type ReceiptModel struct {
	RootRow
	ReceiptNumber string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_receipts_receipt_number"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentDate   time.Time       `gorm:"not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	Notes         *string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// FromDomain populates the persistence model from a domain Receipt.
func (m *ReceiptModel) FromDomain(r *billing.Receipt) {
	m.RootRow = rootRowOf(r.BaseAggregateRoot)
	m.ReceiptNumber = r.ReceiptNumber
	m.InvoiceID = r.InvoiceID
	m.AmountPaid = r.AmountPaid.Amount()
	m.PaymentDate = r.PaymentDate
	m.PaymentMethod = string(r.PaymentMethod)
	m.Notes = r.Notes
}

// ToDomain converts the persistence model to a domain Receipt.
func (m *ReceiptModel) ToDomain() *billing.Receipt {
	return &billing.Receipt{
		BaseAggregateRoot: m.root(),
		ReceiptNumber:     m.ReceiptNumber,
		InvoiceID:         m.InvoiceID,
		AmountPaid:        valueobject.NewMoney(m.AmountPaid),
		PaymentDate:       m.PaymentDate,
		PaymentMethod:     billing.PaymentMethod(m.PaymentMethod),
		Notes:             m.Notes,
	}
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *billing.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

// All lists every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&QuotationModel{},
		&QuotationItemModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&ReceiptModel{},
	}
}
