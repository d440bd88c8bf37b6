package billing

import (
	"testing"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuotation(t *testing.T, taxRate string) *Quotation {
	t.Helper()
	q, err := NewQuotation(QuotationInput{Client: validClient(), TaxRate: rate(taxRate)}, createdAt)
	require.NoError(t, err)
	return q
}

func TestNewQuotation(t *testing.T) {
	t.Run("defaults to draft with zero totals", func(t *testing.T) {
		q := newTestQuotation(t, "16")
		assert.Equal(t, QuotationStatusDraft, q.Status)
		assert.Empty(t, q.QuoteNumber)
		assert.True(t, q.Totals().Equals(ZeroTotals()))
		assert.Equal(t, createdAt, q.CreatedAt)
	})

	t.Run("rejects tax rate above 20", func(t *testing.T) {
		_, err := NewQuotation(QuotationInput{Client: validClient(), TaxRate: rate("20.5")}, createdAt)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "tax_rate", verr.Fields[0].Field)
	})

	t.Run("rejects tax rate finer than the stored precision", func(t *testing.T) {
		_, err := NewQuotation(QuotationInput{Client: validClient(), TaxRate: rate("16.125")}, createdAt)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "tax_rate", verr.Fields[0].Field)
		assert.Equal(t, "Tax rate must have at most 2 decimal places", verr.Fields[0].Message)
	})

	t.Run("rejects negative tax rate", func(t *testing.T) {
		_, err := NewQuotation(QuotationInput{Client: validClient(), TaxRate: rate("-1")}, createdAt)
		assert.Error(t, err)
	})

	t.Run("valid_until must fall after the creation day", func(t *testing.T) {
		sameDay := createdAt.Add(5 * time.Hour)
		_, err := NewQuotation(QuotationInput{Client: validClient(), TaxRate: rate("16"), ValidUntil: &sameDay}, createdAt)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "valid_until", verr.Fields[0].Field)

		nextDay := createdAt.AddDate(0, 0, 1)
		q, err := NewQuotation(QuotationInput{Client: validClient(), TaxRate: rate("16"), ValidUntil: &nextDay}, createdAt)
		require.NoError(t, err)
		assert.Equal(t, nextDay, *q.ValidUntil)
	})

	t.Run("rejects missing client fields and bad email together", func(t *testing.T) {
		c := validClient()
		c.Name = ""
		c.Email = "nope"
		_, err := NewQuotation(QuotationInput{Client: c, TaxRate: rate("16")}, createdAt)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewQuotation(QuotationInput{Client: validClient(), TaxRate: rate("16"), Status: "Archived"}, createdAt)
		assert.Error(t, err)
	})
}

func TestQuotation_ScenarioA(t *testing.T) {
	q := newTestQuotation(t, "16")
	_, err := q.AddItem(item("Widget", 2, "50.00"))
	require.NoError(t, err)

	totals := q.Totals()
	assert.Equal(t, "100.00", totals.Subtotal.String())
	assert.Equal(t, "30.00", totals.LabourCost.String())
	assert.Equal(t, "20.80", totals.TotalTax.String())
	assert.Equal(t, "150.80", totals.GrandTotal.String())
}

func TestQuotation_ItemMutationsRecalculate(t *testing.T) {
	q := newTestQuotation(t, "10")

	a, err := q.AddItem(item("Design", 1, "100.00"))
	require.NoError(t, err)
	aID := a.ID
	_, err = q.AddItem(item("Install", 3, "10.00"))
	require.NoError(t, err)
	assert.Equal(t, "130.00", q.Totals().Subtotal.String())

	_, err = q.UpdateItem(aID, item("Design", 2, "100.00"))
	require.NoError(t, err)
	assert.Equal(t, "230.00", q.Totals().Subtotal.String())
	assert.Equal(t, "69.00", q.Totals().LabourCost.String())

	require.NoError(t, q.RemoveItem(aID))
	assert.Equal(t, "30.00", q.Totals().Subtotal.String())
	assert.Len(t, q.Items, 1)

	assert.ErrorIs(t, q.RemoveItem(uuid.New()), shared.ErrNotFound)
	_, err = q.UpdateItem(uuid.New(), item("x", 1, "1"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestQuotation_RejectsInvalidItems(t *testing.T) {
	q := newTestQuotation(t, "16")
	tests := []struct {
		name  string
		in    ItemInput
		field string
	}{
		{"zero quantity", item("x", 0, "1.00"), "quantity"},
		{"negative quantity", item("x", -2, "1.00"), "quantity"},
		{"zero price", item("x", 1, "0"), "unit_price"},
		{"three decimal price", item("x", 1, "1.005"), "unit_price"},
		{"blank description", item("  ", 1, "1.00"), "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := q.AddItem(tt.in)
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
	assert.Empty(t, q.Items)
}

func TestQuotation_RecalculateIsIdempotent(t *testing.T) {
	q := newTestQuotation(t, "7.5")
	_, _ = q.AddItem(item("a", 3, "33.33"))
	_, _ = q.AddItem(item("b", 1, "0.01"))
	first := q.Recalculate()
	second := q.Recalculate()
	assert.True(t, first.Equals(second))
	assert.Equal(t, "100.00", first.Subtotal.String())
}

func TestQuotation_AssignNumber(t *testing.T) {
	q := newTestQuotation(t, "16")
	require.NoError(t, q.AssignNumber("QUOTE-2024-001"))
	assert.Equal(t, "QUOTE-2024-001", q.QuoteNumber)
	require.Len(t, q.PendingEvents(), 1)
	assert.Equal(t, EventTypeQuotationCreated, q.PendingEvents()[0].EventType())

	err := q.AssignNumber("QUOTE-2024-002")
	assert.Error(t, err, "number is immutable once assigned")
	assert.Equal(t, "QUOTE-2024-001", q.QuoteNumber)

	other := newTestQuotation(t, "16")
	assert.Error(t, other.AssignNumber("INV-2024-001"))
	assert.Error(t, other.AssignNumber("QUOTE-2024-xx"))
}

func TestQuotation_OriginalQuoteNumberSetOnce(t *testing.T) {
	q, err := NewQuotation(QuotationInput{Client: validClient(), TaxRate: rate("16"), OriginalQuoteNumber: "Q-OLD-17"}, createdAt)
	require.NoError(t, err)
	assert.Equal(t, "Q-OLD-17", q.OriginalQuoteNumber)

	require.NoError(t, q.SetOriginalQuoteNumber("Q-OLD-17"))
	require.NoError(t, q.SetOriginalQuoteNumber(""))
	assert.Error(t, q.SetOriginalQuoteNumber("Q-OLD-99"))
	assert.Equal(t, "Q-OLD-17", q.OriginalQuoteNumber)

	err = q.UpdateDetails(QuotationInput{Client: validClient(), TaxRate: rate("16"), OriginalQuoteNumber: "Q-NEW"})
	assert.Error(t, err)
	assert.Equal(t, "Q-OLD-17", q.OriginalQuoteNumber)
}

func TestQuotation_UpdateDetails(t *testing.T) {
	q := newTestQuotation(t, "16")
	_, _ = q.AddItem(item("Widget", 2, "50.00"))

	c := validClient()
	c.Name = "Beta Corp"
	require.NoError(t, q.UpdateDetails(QuotationInput{Client: c, TaxRate: rate("0"), Status: QuotationStatusSent}))
	assert.Equal(t, "Beta Corp", q.Client.Name)
	assert.Equal(t, QuotationStatusSent, q.Status)
	assert.Equal(t, "130.00", q.Totals().GrandTotal.String())

	t.Run("rejected update leaves the quotation untouched", func(t *testing.T) {
		bad := validClient()
		bad.Email = "broken"
		err := q.UpdateDetails(QuotationInput{Client: bad, TaxRate: rate("25")})
		require.Error(t, err)
		assert.Equal(t, "Beta Corp", q.Client.Name)
		assert.True(t, q.TaxRate.IsZero())
	})
}

func TestQuotation_SetStatus(t *testing.T) {
	q := newTestQuotation(t, "16")
	for _, s := range []QuotationStatus{QuotationStatusSent, QuotationStatusApproved, QuotationStatusRejected, QuotationStatusDraft} {
		require.NoError(t, q.SetStatus(s))
		assert.Equal(t, s, q.Status)
	}
	assert.Error(t, q.SetStatus("Paid"))
}

func TestQuotation_String(t *testing.T) {
	q := newTestQuotation(t, "16")
	require.NoError(t, q.AssignNumber("QUOTE-2024-003"))
	assert.Equal(t, "Quotation QUOTE-2024-003 for Acme Ltd", q.String())
}
