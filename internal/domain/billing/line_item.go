package billing

import (
	"strings"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// LineItem is a single priced line on a quotation or invoice
type LineItem struct {
	shared.BaseEntity
	Description string
	Quantity    int
	UnitPrice   valueobject.Money
}

// LineTotal is quantity x unit price, exact
func (l LineItem) LineTotal() valueobject.Money {
	return l.UnitPrice.MultiplyByInt(int64(l.Quantity))
}

func (l LineItem) String() string {
	return l.Description
}

// ItemInput carries the user-editable fields of a line item
type ItemInput struct {
	Description string
	Quantity    int
	UnitPrice   valueobject.Money
}

// Validate checks description, positive quantity and a positive two-place price
func (in ItemInput) Validate() error {
	verr := &shared.ValidationError{}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		verr.Add("description", "This field is required")
	} else if len(desc) > 255 {
		verr.Add("description", "Must be at most 255 characters")
	}
	if in.Quantity <= 0 {
		verr.Add("quantity", "Quantity must be greater than zero")
	}
	if !in.UnitPrice.IsPositive() {
		verr.Add("unit_price", "Unit price must be greater than zero")
	} else if !in.UnitPrice.HasAtMostPlaces(valueobject.MoneyPlaces) {
		verr.Add("unit_price", "Unit price must have at most 2 decimal places")
	}
	return verr.OrNil()
}

func (in ItemInput) apply(l *LineItem) {
	l.Description = strings.TrimSpace(in.Description)
	l.Quantity = in.Quantity
	l.UnitPrice = in.UnitPrice
	l.UpdatedAt = time.Now()
}

// QuotationItem is a line owned by a quotation
type QuotationItem struct {
	LineItem
	QuotationID uuid.UUID
}

// InvoiceItem is a line owned by an invoice. TotalPrice is stored and
// refreshed from quantity and unit price every time the invoice is recalculated.
type InvoiceItem struct {
	LineItem
	InvoiceID  uuid.UUID
	TotalPrice valueobject.Money
}

// RefreshTotal recomputes the stored total price
func (it *InvoiceItem) RefreshTotal() {
	it.TotalPrice = it.LineTotal()
}

func newLineItem(in ItemInput) (LineItem, error) {
	if err := in.Validate(); err != nil {
		return LineItem{}, err
	}
	l := LineItem{BaseEntity: shared.NewBaseEntity()}
	in.apply(&l)
	return l, nil
}
