package billing

import (
	"time"

	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var createdAt = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func validClient() ClientDetails {
	return ClientDetails{
		Name:        "Acme Ltd",
		Email:       "billing@acme.test",
		Address:     "12 Harbour Road",
		PhoneNumber: "+254700000000",
	}
}

func money(s string) valueobject.Money {
	return valueobject.MustMoney(s)
}

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(desc string, qty int, price string) ItemInput {
	return ItemInput{Description: desc, Quantity: qty, UnitPrice: money(price)}
}

func datePtr(t time.Time) *time.Time {
	return &t
}
