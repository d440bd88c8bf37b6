package billing

import (
	"context"
	"testing"
	"time"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestQuotationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("totals with labour and rounded tax", func(t *testing.T) {
		env := newTestEnv(t)
		resp, err := env.quotations.Create(ctx, quoteRequest("16.00", item("Labour", 2, "50.00")))
		require.NoError(t, err)

		assert.Equal(t, "QUOTE-2024-001", resp.QuoteNumber)
		assert.Equal(t, "100.00", resp.Subtotal.String())
		assert.True(t, dec("30").Equal(resp.LabourCost))
		assert.Equal(t, "20.80", resp.TotalTax.String())
		assert.Equal(t, "150.80", resp.GrandTotal.String())
		assert.Equal(t, "Draft", resp.Status)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "100.00", resp.Items[0].LineTotal.String())

		stored, err := env.quotations.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, "150.80", stored.GrandTotal.String())
	})

	t.Run("numbers are sequential within a year and reset in the next", func(t *testing.T) {
		env := newTestEnv(t)
		first, err := env.quotations.Create(ctx, quoteRequest("0"))
		require.NoError(t, err)
		second, err := env.quotations.Create(ctx, quoteRequest("0"))
		require.NoError(t, err)
		assert.Equal(t, "QUOTE-2024-001", first.QuoteNumber)
		assert.Equal(t, "QUOTE-2024-002", second.QuoteNumber)

		env.now = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
		third, err := env.quotations.Create(ctx, quoteRequest("0"))
		require.NoError(t, err)
		assert.Equal(t, "QUOTE-2025-001", third.QuoteNumber)
	})

	t.Run("keeps the original quote number", func(t *testing.T) {
		env := newTestEnv(t)
		req := quoteRequest("0")
		req.OriginalQuoteNumber = "Q-LEGACY-17"
		resp, err := env.quotations.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Q-LEGACY-17", resp.OriginalQuoteNumber)

		update := UpdateQuotationRequest{ClientInput: client("Acme Ltd"), TaxRate: dec("0"), OriginalQuoteNumber: "Q-OTHER"}
		_, err = env.quotations.Update(ctx, resp.ID, update)
		assertCode(t, err, "INVALID_STATE")
	})

	t.Run("rejects invalid input without writing", func(t *testing.T) {
		env := newTestEnv(t)
		req := quoteRequest("25", item("Labour", 0, "50.00"))
		req.ClientEmail = "not-an-email"
		req.ValidUntil = day(2024, 3, 15)

		_, err := env.quotations.Create(ctx, req)
		assertValidation(t, err, "client_email")
		assertValidation(t, err, "tax_rate")
		assertValidation(t, err, "valid_until")
		assert.Zero(t, env.count(t, "quotations"))
		assert.Empty(t, env.events.types())
	})

	t.Run("totals survive a reload unchanged", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.quotations.Create(ctx, quoteRequest("16.125", item("Work", 1, "100.00")))
		assertValidation(t, err, "tax_rate")

		created, err := env.quotations.Create(ctx, quoteRequest("16.13", item("Work", 1, "100.00")))
		require.NoError(t, err)
		loaded, err := env.quotations.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "150.97", created.GrandTotal.String())
		assert.Equal(t, created.GrandTotal.String(), loaded.GrandTotal.String())
	})

	t.Run("publishes after commit", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.quotations.Create(ctx, quoteRequest("0"))
		require.NoError(t, err)
		assert.Equal(t, []string{billing.EventTypeQuotationCreated}, env.events.types())
	})
}

func TestQuotationService_ItemsRecalculate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q, err := env.quotations.Create(ctx, quoteRequest("10", item("Paint", 3, "20.00")))
	require.NoError(t, err)
	assert.Equal(t, "60.00", q.Subtotal.String())

	q, err = env.quotations.AddItem(ctx, q.ID, item("Brushes", 2, "5.25"))
	require.NoError(t, err)
	assert.Equal(t, "70.50", q.Subtotal.String())
	assert.True(t, dec("21.15").Equal(q.LabourCost))
	assert.Equal(t, "9.17", q.TotalTax.String())
	assert.Equal(t, "100.82", q.GrandTotal.String())

	brushes := q.Items[1].ID
	q, err = env.quotations.UpdateItem(ctx, q.ID, brushes, item("Brushes", 4, "5.25"))
	require.NoError(t, err)
	assert.Equal(t, "81.00", q.Subtotal.String())

	q, err = env.quotations.RemoveItem(ctx, q.ID, q.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "21.00", q.Subtotal.String())
	require.Len(t, q.Items, 1)

	stored, err := env.quotations.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.GrandTotal.String(), stored.GrandTotal.String())

	_, err = env.quotations.RemoveItem(ctx, q.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = env.quotations.AddItem(ctx, q.ID, item("Free", 1, "0"))
	assertValidation(t, err, "unit_price")
}

func TestQuotationService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q, err := env.quotations.Create(ctx, quoteRequest("0", item("Labour", 1, "100.00")))
	require.NoError(t, err)

	resp, err := env.quotations.Update(ctx, q.ID, UpdateQuotationRequest{
		ClientInput: client("Acme Holdings"),
		TaxRate:     dec("20"),
		ValidUntil:  day(2024, 4, 30),
		Status:      "Sent",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", resp.ClientName)
	assert.Equal(t, "Sent", resp.Status)
	assert.Equal(t, "26.00", resp.TotalTax.String())
	assert.Equal(t, "156.00", resp.GrandTotal.String())

	_, err = env.quotations.Update(ctx, q.ID, UpdateQuotationRequest{ClientInput: client("X"), TaxRate: dec("0"), Status: "Lost"})
	assertValidation(t, err, "status")

	_, err = env.quotations.Update(ctx, uuid.New(), UpdateQuotationRequest{ClientInput: client("X")})
	assertCode(t, err, "NOT_FOUND")
}

func TestQuotationService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	referenced, err := env.quotations.Create(ctx, quoteRequest("0", item("Labour", 1, "10.00")))
	require.NoError(t, err)
	_, err = env.invoices.CreateFromQuotation(ctx, referenced.ID, CreateInvoiceFromQuotationRequest{})
	require.NoError(t, err)

	err = env.quotations.Delete(ctx, referenced.ID)
	assertCode(t, err, "INVALID_STATE")

	free, err := env.quotations.Create(ctx, quoteRequest("0", item("Labour", 1, "10.00")))
	require.NoError(t, err)
	require.NoError(t, env.quotations.Delete(ctx, free.ID))

	_, err = env.quotations.GetByID(ctx, free.ID)
	assertCode(t, err, "NOT_FOUND")
	assert.Equal(t, int64(1), env.count(t, "quotation_items"))

	assertCode(t, env.quotations.Delete(ctx, uuid.New()), "NOT_FOUND")
}

func TestQuotationService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, status := range []string{"Draft", "Sent", "Sent"} {
		req := quoteRequest("0")
		req.Status = status
		_, err := env.quotations.Create(ctx, req)
		require.NoError(t, err)
	}

	all, total, err := env.quotations.List(ctx, ListFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	sent, total, err := env.quotations.List(ctx, ListFilter{Status: "Sent"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, sent, 2)

	_, _, err = env.quotations.List(ctx, ListFilter{Status: "Lost"})
	assertValidation(t, err, "status")

	byNumber, err := env.quotations.GetByNumber(ctx, "QUOTE-2024-002")
	require.NoError(t, err)
	assert.Equal(t, "Sent", byNumber.Status)
}

func TestQuotationService_CorruptNumberBlocksCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q, err := env.quotations.Create(ctx, quoteRequest("0"))
	require.NoError(t, err)
	require.NoError(t, env.db.Exec("UPDATE quotations SET quote_number = ? WHERE id = ?", "QUOTE-2024-0X7", q.ID).Error)

	_, err = env.quotations.Create(ctx, quoteRequest("0"))
	var ie *shared.IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "QUOTE-2024-0X7", ie.Value)
	assert.Equal(t, int64(1), env.count(t, "quotations"))
}

// racingQuotations simulates another writer taking the generated number
// between generation and insert
type racingQuotations struct {
	*persistence.GormQuotationRepository
	clashes int
}

func (r *racingQuotations) Save(ctx context.Context, q *billing.Quotation) error {
	if r.clashes > 0 {
		r.clashes--
		return gorm.ErrDuplicatedKey
	}
	return r.GormQuotationRepository.Save(ctx, q)
}

func TestQuotationService_RetriesNumberClash(t *testing.T) {
	ctx := context.Background()

	t.Run("retries and succeeds", func(t *testing.T) {
		env := newTestEnv(t)
		repo := &racingQuotations{GormQuotationRepository: env.quotes, clashes: 2}
		svc := NewQuotationService(repo, nil, env.numbers, env.tx,
			WithClock(func() time.Time { return env.now }), WithInsertRetries(3))

		resp, err := svc.Create(ctx, quoteRequest("0"))
		require.NoError(t, err)
		assert.Equal(t, "QUOTE-2024-001", resp.QuoteNumber)
		assert.Equal(t, int64(1), env.count(t, "quotations"))
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		env := newTestEnv(t)
		repo := &racingQuotations{GormQuotationRepository: env.quotes, clashes: 5}
		svc := NewQuotationService(repo, nil, env.numbers, env.tx, WithInsertRetries(1))

		_, err := svc.Create(ctx, quoteRequest("0"))
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		assert.Equal(t, 3, repo.clashes)
	})
}
