package billing

import (
	"testing"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedQuotation(t *testing.T) *Quotation {
	t.Helper()
	q := newTestQuotation(t, "16")
	_, err := q.AddItem(item("Widget", 2, "50.00"))
	require.NoError(t, err)
	require.NoError(t, q.AssignNumber("QUOTE-2024-001"))
	return q
}

func newTestStandalone(t *testing.T, taxRate string) *Invoice {
	t.Helper()
	inv, err := NewStandaloneInvoice(InvoiceInput{Client: validClient(), TaxRate: rate(taxRate)}, createdAt)
	require.NoError(t, err)
	return inv
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		grand, paid string
		want        InvoiceStatus
	}{
		{"150.80", "0", InvoiceStatusUnpaid},
		{"150.80", "50.00", InvoiceStatusPartiallyPaid},
		{"150.80", "150.79", InvoiceStatusPartiallyPaid},
		{"150.80", "150.80", InvoiceStatusPaid},
		{"150.80", "200.00", InvoiceStatusPaid},
		{"0", "0", InvoiceStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.grand+"/"+tt.paid, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(money(tt.grand), money(tt.paid)))
		})
	}
}

func TestNewInvoiceFromQuotation(t *testing.T) {
	q := numberedQuotation(t)
	due := createdAt.AddDate(0, 0, 30)

	inv, err := NewInvoiceFromQuotation(q, &due, createdAt)
	require.NoError(t, err)

	assert.True(t, inv.IsLinked())
	assert.Equal(t, q.ID, *inv.QuotationID)
	assert.Equal(t, "QUOTE-2024-001", inv.QuotationNumber)
	assert.Equal(t, q.Client, inv.Client)
	assert.True(t, inv.TaxRate.Equal(q.TaxRate))
	assert.True(t, inv.Totals().Equals(q.Totals()))
	assert.Equal(t, "30.00", inv.Totals().LabourCost.String())
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)

	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Widget", inv.Items[0].Description)
	assert.Equal(t, "100.00", inv.Items[0].TotalPrice.String())
	assert.Equal(t, inv.ID, inv.Items[0].InvoiceID)
	assert.NotEqual(t, q.Items[0].ID, inv.Items[0].ID)

	t.Run("snapshot is not live-synced", func(t *testing.T) {
		_, err := q.AddItem(item("Extra", 1, "500.00"))
		require.NoError(t, err)
		assert.Equal(t, "150.80", inv.Totals().GrandTotal.String())
		assert.Len(t, inv.Items, 1)
	})

	t.Run("linked invoice is read-only", func(t *testing.T) {
		_, err := inv.AddItem(item("x", 1, "1.00"))
		assert.Error(t, err)
		assert.Error(t, inv.RemoveItem(inv.Items[0].ID))
		_, err = inv.UpdateItem(inv.Items[0].ID, item("x", 1, "1.00"))
		assert.Error(t, err)

		other := validClient()
		other.Name = "Someone Else"
		assert.Error(t, inv.UpdateDetails(InvoiceInput{Client: other, TaxRate: inv.TaxRate}))

		newDue := createdAt.AddDate(0, 0, 60)
		require.NoError(t, inv.UpdateDetails(InvoiceInput{Client: inv.Client, TaxRate: inv.TaxRate, DueDate: &newDue}))
		assert.Equal(t, newDue, *inv.DueDate)
	})

	t.Run("recalculate keeps the snapshot", func(t *testing.T) {
		before := inv.Totals()
		inv.Recalculate()
		assert.True(t, before.Equals(inv.Totals()))
	})
}

func TestNewInvoiceFromQuotation_RequiresNumberedQuotation(t *testing.T) {
	q := newTestQuotation(t, "16")
	_, err := NewInvoiceFromQuotation(q, nil, createdAt)
	assert.Error(t, err)
}

func TestInvoice_ScenarioC_Standalone(t *testing.T) {
	inv := newTestStandalone(t, "10")
	_, err := inv.AddItem(item("Consulting", 1, "200.00"))
	require.NoError(t, err)

	totals := inv.Totals()
	assert.Equal(t, "200.00", totals.Subtotal.String())
	assert.True(t, totals.LabourCost.IsZero())
	assert.Equal(t, "20.00", totals.TotalTax.String())
	assert.Equal(t, "220.00", totals.GrandTotal.String())
	assert.Equal(t, "200.00", inv.Items[0].TotalPrice.String())
}

func TestInvoice_StandaloneItemMutations(t *testing.T) {
	inv := newTestStandalone(t, "0")
	a, err := inv.AddItem(item("a", 2, "10.00"))
	require.NoError(t, err)
	aID := a.ID

	updated, err := inv.UpdateItem(aID, item("a", 5, "10.00"))
	require.NoError(t, err)
	assert.Equal(t, "50.00", updated.TotalPrice.String())
	assert.Equal(t, "50.00", inv.Totals().GrandTotal.String())

	require.NoError(t, inv.RemoveItem(aID))
	assert.True(t, inv.Totals().GrandTotal.IsZero())
}

func TestInvoice_RestoreSnapshot(t *testing.T) {
	standalone := newTestStandalone(t, "10")
	standalone.RestoreSnapshot(Totals{GrandTotal: money("999")})
	assert.True(t, standalone.Totals().GrandTotal.IsZero(), "standalone totals are always derived")

	inv, err := NewInvoiceFromQuotation(numberedQuotation(t), nil, createdAt)
	require.NoError(t, err)
	snap := CalculateTotals(money("10"), rate("0"), true)
	inv.RestoreSnapshot(snap)
	assert.True(t, inv.Totals().Equals(snap))
}

func TestInvoice_DueDate(t *testing.T) {
	sameDay := createdAt
	_, err := NewStandaloneInvoice(InvoiceInput{Client: validClient(), TaxRate: rate("10"), DueDate: &sameDay}, createdAt)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_date", verr.Fields[0].Field)

	inv := newTestStandalone(t, "10")
	assert.Error(t, inv.SetDueDate(datePtr(createdAt.AddDate(0, 0, -1))))
	require.NoError(t, inv.SetDueDate(datePtr(createdAt.AddDate(0, 0, 1))))
	require.NoError(t, inv.SetDueDate(nil))
	assert.Nil(t, inv.DueDate)
}

func TestInvoice_ApplyPayments(t *testing.T) {
	inv, err := NewInvoiceFromQuotation(numberedQuotation(t), nil, createdAt)
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber("INV-2024-001"))
	inv.TakeEvents()

	t.Run("no payment keeps unpaid", func(t *testing.T) {
		assert.False(t, inv.ApplyPayments(valueobject.Zero()))
		assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
	})

	t.Run("scenario E partial payment", func(t *testing.T) {
		assert.True(t, inv.ApplyPayments(money("50.00")))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.Equal(t, "100.80", inv.Outstanding(money("50.00")).String())
		assert.Empty(t, inv.PendingEvents())
	})

	t.Run("full payment raises paid event", func(t *testing.T) {
		assert.True(t, inv.ApplyPayments(money("150.80")))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		require.Len(t, inv.PendingEvents(), 1)
		assert.Equal(t, EventTypeInvoicePaid, inv.PendingEvents()[0].EventType())

		assert.False(t, inv.ApplyPayments(money("150.80")), "recomputing is idempotent")
		assert.Len(t, inv.PendingEvents(), 1)
	})
}

func TestInvoice_ManualStatus(t *testing.T) {
	inv := newTestStandalone(t, "10")
	_, _ = inv.AddItem(item("Consulting", 1, "200.00"))

	t.Run("manual status survives recomputation without payments", func(t *testing.T) {
		require.NoError(t, inv.SetStatus(InvoiceStatusSent, valueobject.Zero()))
		inv.ApplyPayments(valueobject.Zero())
		assert.Equal(t, InvoiceStatusSent, inv.Status)

		require.NoError(t, inv.SetStatus(InvoiceStatusOverdue, valueobject.Zero()))
		inv.ApplyPayments(valueobject.Zero())
		assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	})

	t.Run("derived statuses cannot be set by hand", func(t *testing.T) {
		assert.Error(t, inv.SetStatus(InvoiceStatusPaid, valueobject.Zero()))
		assert.Error(t, inv.SetStatus(InvoiceStatusPartiallyPaid, valueobject.Zero()))
		assert.Error(t, inv.SetStatus("Cancelled", valueobject.Zero()))
	})

	t.Run("payments make the status authoritative", func(t *testing.T) {
		inv.ApplyPayments(money("20.00"))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.Error(t, inv.SetStatus(InvoiceStatusDraft, money("20.00")))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	})
}

func TestInvoice_StampedInvoice(t *testing.T) {
	inv := newTestStandalone(t, "10")
	inv.SetStampedInvoice("stamped/INV-2024-001.pdf")
	require.NotNil(t, inv.StampedInvoice)
	assert.Equal(t, "stamped/INV-2024-001.pdf", *inv.StampedInvoice)
	inv.SetStampedInvoice("")
	assert.Nil(t, inv.StampedInvoice)
}

func TestInvoice_AssignNumber(t *testing.T) {
	inv := newTestStandalone(t, "10")
	assert.Error(t, inv.AssignNumber("RCT-2024-001"))
	require.NoError(t, inv.AssignNumber("INV-2024-001"))
	assert.Error(t, inv.AssignNumber("INV-2024-002"))
	assert.Equal(t, "INV-2024-001", inv.String())
}
