package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney,
		PaymentMethodCheque, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// Receipt records a payment against an invoice. Receipts are immutable once
// created; there is no update or void path.
type Receipt struct {
	shared.BaseAggregateRoot
	ReceiptNumber string
	InvoiceID     uuid.UUID
	AmountPaid    valueobject.Money
	PaymentDate   time.Time
	PaymentMethod PaymentMethod
	Notes         *string
}

// ReceiptInput carries the fields supplied when recording a payment
type ReceiptInput struct {
	AmountPaid    valueobject.Money
	PaymentDate   time.Time
	PaymentMethod PaymentMethod
	Notes         string
}

// NewReceipt validates a payment against the invoice's outstanding balance,
// which the caller must compute from persisted receipts immediately before.
func NewReceipt(inv *Invoice, in ReceiptInput, outstanding valueobject.Money, now time.Time) (*Receipt, error) {
	verr := &shared.ValidationError{}
	switch {
	case !in.AmountPaid.IsPositive():
		verr.Add("amount_paid", "Amount paid must be greater than zero")
	case !in.AmountPaid.HasAtMostPlaces(valueobject.MoneyPlaces):
		verr.Add("amount_paid", "Amount paid must have at most 2 decimal places")
	case in.AmountPaid.GreaterThan(outstanding):
		verr.Add("amount_paid", fmt.Sprintf("Amount paid %s exceeds the outstanding balance of %s on invoice %s",
			in.AmountPaid, outstanding, inv.InvoiceNumber))
	}
	if !in.PaymentMethod.IsValid() {
		verr.Add("payment_method", fmt.Sprintf("%q is not a valid payment method", in.PaymentMethod))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	r := &Receipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceID:         inv.ID,
		AmountPaid:        in.AmountPaid,
		PaymentDate:       in.PaymentDate,
		PaymentMethod:     in.PaymentMethod,
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.PaymentDate.IsZero() {
		r.PaymentDate = now
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		r.Notes = &notes
	}
	return r, nil
}

// AssignNumber sets the receipt number, once
func (r *Receipt) AssignNumber(number string) error {
	if r.ReceiptNumber != "" {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Receipt already numbered %s", r.ReceiptNumber))
	}
	if err := checkNumber(PrefixReceipt, number); err != nil {
		return err
	}
	r.ReceiptNumber = number
	r.Record(NewReceiptRecordedEvent(r))
	return nil
}

func (r *Receipt) String() string {
	return r.ReceiptNumber
}

// SumPaid adds up the amounts of the given receipts
func SumPaid(receipts []Receipt) valueobject.Money {
	total := valueobject.Zero()
	for _, r := range receipts {
		total = total.Add(r.AmountPaid)
	}
	return total
}
