package billing

import (
	"fmt"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "Draft"
	InvoiceStatusSent          InvoiceStatus = "Sent"
	InvoiceStatusPaid          InvoiceStatus = "Paid"
	InvoiceStatusOverdue       InvoiceStatus = "Overdue"
	InvoiceStatusUnpaid        InvoiceStatus = "Unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "Partially Paid"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue,
		InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid:
		return true
	}
	return false
}

// IsManual returns true for statuses set by users rather than derived from receipts
func (s InvoiceStatus) IsManual() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// DerivePaymentStatus applies the payment formula:
//
//	outstanding <= 0             -> Paid
//	0 < outstanding < grandTotal -> Partially Paid
//	otherwise                    -> Unpaid
func DerivePaymentStatus(grandTotal, totalPaid valueobject.Money) InvoiceStatus {
	outstanding := grandTotal.Subtract(totalPaid)
	switch {
	case !outstanding.IsPositive():
		return InvoiceStatusPaid
	case outstanding.LessThan(grandTotal):
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusUnpaid
	}
}

// Invoice bills a client, either as a snapshot of a quotation or standalone
// with its own items. Receipts are stored separately and referenced by InvoiceID.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber   string
	QuotationID     *uuid.UUID
	QuotationNumber string
	Client          ClientDetails
	Status          InvoiceStatus
	DueDate         *time.Time
	TaxRate         decimal.Decimal
	StampedInvoice  *string
	Items           []InvoiceItem
	totals          Totals
}

// InvoiceInput carries the editable header fields of a standalone invoice
type InvoiceInput struct {
	Client  ClientDetails
	TaxRate decimal.Decimal
	DueDate *time.Time
}

func newInvoice(now time.Time, dueDate *time.Time) *Invoice {
	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            InvoiceStatusUnpaid,
		DueDate:           dueDate,
		totals:            ZeroTotals(),
	}
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return inv
}

// NewStandaloneInvoice creates an invoice whose totals come from its own items.
// Standalone invoices never carry labour cost.
func NewStandaloneInvoice(in InvoiceInput, now time.Time) (*Invoice, error) {
	inv := newInvoice(now, in.DueDate)
	inv.Client = in.Client.Normalize()
	inv.TaxRate = in.TaxRate
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	inv.Recalculate()
	return inv, nil
}

// NewInvoiceFromQuotation creates an invoice that snapshots the quotation's
// client fields, tax rate, totals and items. The copy is never re-synced.
func NewInvoiceFromQuotation(q *Quotation, dueDate *time.Time, now time.Time) (*Invoice, error) {
	if !q.HasNumber() {
		return nil, shared.NewDomainError("INVALID_STATE", "Quotation must be saved before it can be invoiced")
	}
	inv := newInvoice(now, dueDate)
	inv.linkQuotation(q)
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (inv *Invoice) linkQuotation(q *Quotation) {
	id := q.ID
	inv.QuotationID = &id
	inv.QuotationNumber = q.QuoteNumber
	inv.Client = q.Client
	inv.TaxRate = q.TaxRate
	inv.totals = q.Recalculate()

	if len(inv.Items) > 0 {
		return
	}
	for _, src := range q.Items {
		item := InvoiceItem{
			LineItem: LineItem{
				BaseEntity:  shared.NewBaseEntity(),
				Description: src.Description,
				Quantity:    src.Quantity,
				UnitPrice:   src.UnitPrice,
			},
			InvoiceID: inv.ID,
		}
		item.RefreshTotal()
		inv.Items = append(inv.Items, item)
	}
}

// IsLinked reports whether the invoice was created from a quotation
func (inv *Invoice) IsLinked() bool {
	return inv.QuotationID != nil
}

// Totals returns the invoice figures as of the last recalculation
func (inv *Invoice) Totals() Totals {
	return inv.totals
}

// RestoreSnapshot reinstates the totals copied from a quotation when a linked
// invoice is loaded from storage. Standalone invoices ignore it and keep
// deriving from their items.
func (inv *Invoice) RestoreSnapshot(t Totals) {
	if inv.IsLinked() {
		inv.totals = t
	}
}

// AssignNumber sets the invoice number, once
func (inv *Invoice) AssignNumber(number string) error {
	if inv.InvoiceNumber != "" {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Invoice already numbered %s", inv.InvoiceNumber))
	}
	if err := checkNumber(PrefixInvoice, number); err != nil {
		return err
	}
	inv.InvoiceNumber = number
	inv.Record(NewInvoiceCreatedEvent(inv))
	return nil
}

// UpdateDetails edits the header. Quotation-linked invoices are read-only
// except for the due date.
func (inv *Invoice) UpdateDetails(in InvoiceInput) error {
	if inv.IsLinked() {
		client := in.Client.Normalize()
		if client != inv.Client || !in.TaxRate.Equal(inv.TaxRate) {
			return inv.readOnlyError()
		}
		return inv.SetDueDate(in.DueDate)
	}
	next := *inv
	next.Client = in.Client.Normalize()
	next.TaxRate = in.TaxRate
	next.DueDate = in.DueDate
	if err := next.Validate(); err != nil {
		return err
	}
	inv.Client = next.Client
	inv.TaxRate = next.TaxRate
	inv.DueDate = next.DueDate
	inv.touch()
	return nil
}

// SetDueDate changes the due date, which must fall after the creation date
func (inv *Invoice) SetDueDate(due *time.Time) error {
	if due != nil && !dayAfter(*due, inv.CreatedAt) {
		return shared.NewValidationError("due_date", "Due date must be later than the date created")
	}
	inv.DueDate = due
	inv.UpdatedAt = time.Now()
	return nil
}

// SetStampedInvoice stores a reference to the scanned, stamped copy
func (inv *Invoice) SetStampedInvoice(ref string) {
	if ref == "" {
		inv.StampedInvoice = nil
	} else {
		inv.StampedInvoice = &ref
	}
	inv.UpdatedAt = time.Now()
}

// Item returns the item with the given id
func (inv *Invoice) Item(itemID uuid.UUID) (*InvoiceItem, bool) {
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			return &inv.Items[i], true
		}
	}
	return nil, false
}

// AddItem appends a line to a standalone invoice and recalculates
func (inv *Invoice) AddItem(in ItemInput) (*InvoiceItem, error) {
	if inv.IsLinked() {
		return nil, inv.readOnlyError()
	}
	line, err := newLineItem(in)
	if err != nil {
		return nil, err
	}
	item := InvoiceItem{LineItem: line, InvoiceID: inv.ID}
	item.RefreshTotal()
	inv.Items = append(inv.Items, item)
	inv.touch()
	return &inv.Items[len(inv.Items)-1], nil
}

// UpdateItem edits a line of a standalone invoice and recalculates
func (inv *Invoice) UpdateItem(itemID uuid.UUID, in ItemInput) (*InvoiceItem, error) {
	if inv.IsLinked() {
		return nil, inv.readOnlyError()
	}
	item, ok := inv.Item(itemID)
	if !ok {
		return nil, shared.ErrNotFound
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.apply(&item.LineItem)
	item.RefreshTotal()
	inv.touch()
	return item, nil
}

// RemoveItem deletes a line from a standalone invoice and recalculates
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if inv.IsLinked() {
		return inv.readOnlyError()
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			inv.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Recalculate refreshes every item's stored total and, for standalone
// invoices, derives the invoice totals from them. Linked invoices keep
// their quotation snapshot. It is idempotent.
func (inv *Invoice) Recalculate() Totals {
	subtotal := valueobject.Zero()
	for i := range inv.Items {
		inv.Items[i].RefreshTotal()
		subtotal = subtotal.Add(inv.Items[i].TotalPrice)
	}
	if !inv.IsLinked() {
		inv.totals = CalculateTotals(subtotal, inv.TaxRate, false)
	}
	return inv.totals
}

// Outstanding is grand total minus what has been paid
func (inv *Invoice) Outstanding(totalPaid valueobject.Money) valueobject.Money {
	return inv.totals.GrandTotal.Subtract(totalPaid)
}

// ApplyPayments recomputes the status from the total paid so far. While
// nothing has been paid a manual Draft, Sent or Overdue status is kept and
// anything else resets to Unpaid; once money has been received the payment
// formula is authoritative. Returns true when the status changed.
func (inv *Invoice) ApplyPayments(totalPaid valueobject.Money) bool {
	previous := inv.Status
	switch {
	case totalPaid.IsPositive():
		inv.Status = DerivePaymentStatus(inv.totals.GrandTotal, totalPaid)
	case !inv.Status.IsManual():
		inv.Status = InvoiceStatusUnpaid
	}
	if inv.Status == previous {
		return false
	}
	if inv.Status == InvoiceStatusPaid {
		inv.Record(NewInvoicePaidEvent(inv, totalPaid))
	}
	inv.UpdatedAt = time.Now()
	return true
}

// SetStatus applies a manual status. Paid and Partially Paid can only be
// derived from receipts, and no manual change is accepted once money has
// been received.
func (inv *Invoice) SetStatus(status InvoiceStatus, totalPaid valueobject.Money) error {
	if !status.IsValid() {
		return shared.NewValidationError("status", fmt.Sprintf("%q is not a valid invoice status", status))
	}
	if status == InvoiceStatusPaid || status == InvoiceStatusPartiallyPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Status %s is derived from receipts", status))
	}
	if totalPaid.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Invoice status is derived from receipts once a payment exists")
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return nil
}

// Validate checks every header invariant; it is run before each save
func (inv *Invoice) Validate() error {
	verr := &shared.ValidationError{}
	if err := mergeValidation(verr, inv.Client.Validate()); err != nil {
		return err
	}
	if err := mergeValidation(verr, ValidateTaxRate(inv.TaxRate)); err != nil {
		return err
	}
	if inv.DueDate != nil && !dayAfter(*inv.DueDate, inv.CreatedAt) {
		verr.Add("due_date", "Due date must be later than the date created")
	}
	if !inv.Status.IsValid() {
		verr.Add("status", fmt.Sprintf("%q is not a valid invoice status", inv.Status))
	}
	return verr.OrNil()
}

func (inv *Invoice) String() string {
	return inv.InvoiceNumber
}

func (inv *Invoice) readOnlyError() error {
	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Invoice created from quotation %s is read-only", inv.QuotationNumber))
}

func (inv *Invoice) touch() {
	inv.Recalculate()
	inv.UpdatedAt = time.Now()
}
