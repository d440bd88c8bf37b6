package billing

import (
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var (
	// LabourRate is the labour surcharge applied to quotation subtotals
	LabourRate = decimal.RequireFromString("0.30")
	// MaxTaxRate is the highest accepted tax percentage
	MaxTaxRate = decimal.NewFromInt(20)
)

// Totals are the derived monetary figures of a quotation or invoice
type Totals struct {
	Subtotal   valueobject.Money `json:"subtotal"`
	LabourCost valueobject.Money `json:"labour_cost"`
	TotalTax   valueobject.Money `json:"total_tax"`
	GrandTotal valueobject.Money `json:"grand_total"`
}

// ZeroTotals returns the totals of a document without items
func ZeroTotals() Totals {
	return Totals{
		Subtotal:   valueobject.Zero(),
		LabourCost: valueobject.Zero(),
		TotalTax:   valueobject.Zero(),
		GrandTotal: valueobject.Zero(),
	}
}

// Equals compares all four figures numerically
func (t Totals) Equals(o Totals) bool {
	return t.Subtotal.Equals(o.Subtotal) &&
		t.LabourCost.Equals(o.LabourCost) &&
		t.TotalTax.Equals(o.TotalTax) &&
		t.GrandTotal.Equals(o.GrandTotal)
}

// CalculateTotals derives totals from a subtotal:
//
//	labour = subtotal * 0.30 (only when withLabour), exact
//	tax    = round((subtotal + labour) * taxRate / 100, 2)
//	grand  = round(subtotal + labour + tax, 2)
func CalculateTotals(subtotal valueobject.Money, taxRate decimal.Decimal, withLabour bool) Totals {
	labour := valueobject.Zero()
	if withLabour {
		labour = subtotal.Multiply(LabourRate)
	}
	base := subtotal.Add(labour)
	tax := base.Percentage(taxRate).Round()
	return Totals{
		Subtotal:   subtotal,
		LabourCost: labour,
		TotalTax:   tax,
		GrandTotal: base.Add(tax).Round(),
	}
}

// ValidateTaxRate accepts percentages in [0, 20] with at most two decimal
// places, the precision the rate is stored with
func ValidateTaxRate(rate decimal.Decimal) error {
	switch {
	case rate.IsNegative() || rate.GreaterThan(MaxTaxRate):
		return shared.NewValidationError("tax_rate", "Tax rate must be between 0 and 20")
	case !rate.Equal(rate.Truncate(valueobject.MoneyPlaces)):
		return shared.NewValidationError("tax_rate", "Tax rate must have at most 2 decimal places")
	}
	return nil
}
