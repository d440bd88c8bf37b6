package billing

import (
	"testing"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReceipt(t *testing.T) {
	inv, err := NewInvoiceFromQuotation(numberedQuotation(t), nil, createdAt)
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber("INV-2024-001"))
	outstanding := inv.Outstanding(money("0"))

	t.Run("accepts the full outstanding balance", func(t *testing.T) {
		r, err := NewReceipt(inv, ReceiptInput{AmountPaid: money("150.80"), PaymentMethod: PaymentMethodCash}, outstanding, createdAt)
		require.NoError(t, err)
		assert.Equal(t, inv.ID, r.InvoiceID)
		assert.Equal(t, createdAt, r.PaymentDate, "payment date defaults to now")
		assert.Nil(t, r.Notes)
	})

	t.Run("keeps notes", func(t *testing.T) {
		r, err := NewReceipt(inv, ReceiptInput{AmountPaid: money("1"), PaymentMethod: PaymentMethodMobileMoney, Notes: " deposit "}, outstanding, createdAt)
		require.NoError(t, err)
		require.NotNil(t, r.Notes)
		assert.Equal(t, "deposit", *r.Notes)
	})

	rejects := []struct {
		name  string
		in    ReceiptInput
		field string
	}{
		{"zero amount", ReceiptInput{AmountPaid: money("0"), PaymentMethod: PaymentMethodCash}, "amount_paid"},
		{"negative amount", ReceiptInput{AmountPaid: money("-5"), PaymentMethod: PaymentMethodCash}, "amount_paid"},
		{"overpayment", ReceiptInput{AmountPaid: money("150.81"), PaymentMethod: PaymentMethodCash}, "amount_paid"},
		{"sub-cent amount", ReceiptInput{AmountPaid: money("1.001"), PaymentMethod: PaymentMethodCash}, "amount_paid"},
		{"unknown method", ReceiptInput{AmountPaid: money("10"), PaymentMethod: "BARTER"}, "payment_method"},
	}
	for _, tt := range rejects {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewReceipt(inv, tt.in, outstanding, createdAt)
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}

	t.Run("scenario D second receipt on a settled invoice", func(t *testing.T) {
		_, err := NewReceipt(inv, ReceiptInput{AmountPaid: money("0.01"), PaymentMethod: PaymentMethodCash}, inv.Outstanding(money("150.80")), createdAt)
		assert.Error(t, err)
	})
}

func TestReceipt_AssignNumber(t *testing.T) {
	inv := newTestStandalone(t, "10")
	_, _ = inv.AddItem(item("x", 1, "10.00"))
	r, err := NewReceipt(inv, ReceiptInput{AmountPaid: money("5"), PaymentMethod: PaymentMethodCard}, inv.Outstanding(money("0")), createdAt)
	require.NoError(t, err)

	assert.Error(t, r.AssignNumber("INV-2024-001"))
	require.NoError(t, r.AssignNumber("RCT-2024-001"))
	assert.Error(t, r.AssignNumber("RCT-2024-002"))
	assert.Equal(t, "RCT-2024-001", r.String())
	require.Len(t, r.PendingEvents(), 1)
	assert.Equal(t, EventTypeReceiptRecorded, r.PendingEvents()[0].EventType())
}

func TestSumPaid(t *testing.T) {
	receipts := []Receipt{{AmountPaid: money("50.00")}, {AmountPaid: money("0.80")}, {AmountPaid: money("100")}}
	assert.Equal(t, "150.80", SumPaid(receipts).String())
	assert.True(t, SumPaid(nil).IsZero())
}

func TestPaymentMethod_IsValid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney,
		PaymentMethodCheque, PaymentMethodCard, PaymentMethodOther} {
		assert.True(t, m.IsValid(), m)
	}
	assert.False(t, PaymentMethod("").IsValid())
}
