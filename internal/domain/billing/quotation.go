package billing

import (
	"fmt"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationStatus represents the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "Draft"
	QuotationStatusSent     QuotationStatus = "Sent"
	QuotationStatusApproved QuotationStatus = "Approved"
	QuotationStatusRejected QuotationStatus = "Rejected"
)

// IsValid checks if the status is a valid QuotationStatus
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusApproved, QuotationStatusRejected:
		return true
	}
	return false
}

func (s QuotationStatus) String() string {
	return string(s)
}

// Quotation is a priced offer to a client. Its totals are derived from its
// items and are recomputed on every item mutation and before every save.
type Quotation struct {
	shared.BaseAggregateRoot
	QuoteNumber         string
	OriginalQuoteNumber string
	Client              ClientDetails
	Status              QuotationStatus
	ValidUntil          *time.Time
	TaxRate             decimal.Decimal
	Items               []QuotationItem
	totals              Totals
}

// QuotationInput carries the editable header fields of a quotation
type QuotationInput struct {
	Client              ClientDetails
	TaxRate             decimal.Decimal
	ValidUntil          *time.Time
	Status              QuotationStatus
	OriginalQuoteNumber string
}

// NewQuotation creates a draft quotation created at now. The quote number is
// assigned separately, once, when the quotation is first persisted.
func NewQuotation(in QuotationInput, now time.Time) (*Quotation, error) {
	q := &Quotation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            QuotationStatusDraft,
		totals:            ZeroTotals(),
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	if in.Status != "" {
		q.Status = in.Status
	}
	q.Client = in.Client.Normalize()
	q.TaxRate = in.TaxRate
	q.ValidUntil = in.ValidUntil
	q.OriginalQuoteNumber = in.OriginalQuoteNumber

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Totals returns the derived figures as of the last recalculation
func (q *Quotation) Totals() Totals {
	return q.totals
}

// HasNumber reports whether a quote number was assigned
func (q *Quotation) HasNumber() bool {
	return q.QuoteNumber != ""
}

// AssignNumber sets the quote number. A quote number is immutable once assigned.
func (q *Quotation) AssignNumber(number string) error {
	if q.HasNumber() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Quotation already numbered %s", q.QuoteNumber))
	}
	if err := checkNumber(PrefixQuotation, number); err != nil {
		return err
	}
	q.QuoteNumber = number
	q.Record(NewQuotationCreatedEvent(q))
	return nil
}

// SetOriginalQuoteNumber records a legacy identifier. Once set it is never overwritten.
func (q *Quotation) SetOriginalQuoteNumber(number string) error {
	if number == "" || number == q.OriginalQuoteNumber {
		return nil
	}
	if q.OriginalQuoteNumber != "" {
		return shared.NewDomainError("INVALID_STATE", "Original quote number cannot be changed once set")
	}
	q.OriginalQuoteNumber = number
	return nil
}

// UpdateDetails replaces the editable header fields and recalculates.
// Nothing is changed when any field is rejected.
func (q *Quotation) UpdateDetails(in QuotationInput) error {
	if in.OriginalQuoteNumber != "" && q.OriginalQuoteNumber != "" && in.OriginalQuoteNumber != q.OriginalQuoteNumber {
		return shared.NewDomainError("INVALID_STATE", "Original quote number cannot be changed once set")
	}
	next := *q
	next.Client = in.Client.Normalize()
	next.TaxRate = in.TaxRate
	next.ValidUntil = in.ValidUntil
	if in.Status != "" {
		next.Status = in.Status
	}
	if err := next.Validate(); err != nil {
		return err
	}
	q.Client = next.Client
	q.TaxRate = next.TaxRate
	q.ValidUntil = next.ValidUntil
	q.Status = next.Status
	if q.OriginalQuoteNumber == "" {
		q.OriginalQuoteNumber = in.OriginalQuoteNumber
	}
	q.touch()
	return nil
}

// SetStatus moves the quotation to any known status
func (q *Quotation) SetStatus(status QuotationStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("status", fmt.Sprintf("%q is not a valid quotation status", status))
	}
	q.Status = status
	q.touch()
	return nil
}

// Item returns the item with the given id
func (q *Quotation) Item(itemID uuid.UUID) (*QuotationItem, bool) {
	for i := range q.Items {
		if q.Items[i].ID == itemID {
			return &q.Items[i], true
		}
	}
	return nil, false
}

// AddItem appends a line and recalculates totals
func (q *Quotation) AddItem(in ItemInput) (*QuotationItem, error) {
	line, err := newLineItem(in)
	if err != nil {
		return nil, err
	}
	q.Items = append(q.Items, QuotationItem{LineItem: line, QuotationID: q.ID})
	q.touch()
	return &q.Items[len(q.Items)-1], nil
}

// UpdateItem edits a line and recalculates totals
func (q *Quotation) UpdateItem(itemID uuid.UUID, in ItemInput) (*QuotationItem, error) {
	item, ok := q.Item(itemID)
	if !ok {
		return nil, shared.ErrNotFound
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.apply(&item.LineItem)
	q.touch()
	return item, nil
}

// RemoveItem deletes a line and recalculates totals
func (q *Quotation) RemoveItem(itemID uuid.UUID) error {
	for i := range q.Items {
		if q.Items[i].ID == itemID {
			q.Items = append(q.Items[:i], q.Items[i+1:]...)
			q.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Recalculate derives subtotal, labour, tax and grand total from the items.
// It is idempotent.
func (q *Quotation) Recalculate() Totals {
	subtotal := valueobject.Zero()
	for _, it := range q.Items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	q.totals = CalculateTotals(subtotal, q.TaxRate, true)
	return q.totals
}

// Validate checks every header invariant; it is run before each save
func (q *Quotation) Validate() error {
	verr := &shared.ValidationError{}
	if err := mergeValidation(verr, q.Client.Validate()); err != nil {
		return err
	}
	if err := mergeValidation(verr, ValidateTaxRate(q.TaxRate)); err != nil {
		return err
	}
	if q.ValidUntil != nil && !dayAfter(*q.ValidUntil, q.CreatedAt) {
		verr.Add("valid_until", "Valid until date must be later than the date created")
	}
	if !q.Status.IsValid() {
		verr.Add("status", fmt.Sprintf("%q is not a valid quotation status", q.Status))
	}
	return verr.OrNil()
}

// String renders "Quotation <number> for <client>"
func (q *Quotation) String() string {
	return fmt.Sprintf("Quotation %s for %s", q.QuoteNumber, q.Client.Name)
}

func (q *Quotation) touch() {
	q.Recalculate()
	q.UpdatedAt = time.Now()
}
