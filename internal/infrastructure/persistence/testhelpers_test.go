package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var issuedAt = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

// setupTestDB opens a private in-memory sqlite database with the billing schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     ":memory:",
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func testClient(name string) billing.ClientDetails {
	return billing.ClientDetails{
		Name:        name,
		Email:       "accounts@example.test",
		Address:     "4 Mill Lane",
		PhoneNumber: "+441234567890",
	}
}

func lineItem(desc string, qty int, price string) billing.ItemInput {
	return billing.ItemInput{Description: desc, Quantity: qty, UnitPrice: valueobject.MustMoney(price)}
}

func newSavedQuotation(t *testing.T, repo *GormQuotationRepository, number, client string, items ...billing.ItemInput) *billing.Quotation {
	t.Helper()
	return saveQuotation(t, context.Background(), repo, number, client, items...)
}

func newSavedQuotationCtx(t *testing.T, ctx context.Context, repo *GormQuotationRepository, number string) *billing.Quotation {
	t.Helper()
	return saveQuotation(t, ctx, repo, number, "Acme Ltd")
}

func saveQuotation(t *testing.T, ctx context.Context, repo *GormQuotationRepository, number, client string, items ...billing.ItemInput) *billing.Quotation {
	t.Helper()
	q, err := billing.NewQuotation(billing.QuotationInput{
		Client:  testClient(client),
		TaxRate: decimal.RequireFromString("16"),
	}, issuedAt)
	require.NoError(t, err)
	for _, in := range items {
		_, err := q.AddItem(in)
		require.NoError(t, err)
	}
	require.NoError(t, q.AssignNumber(number))
	require.NoError(t, repo.Save(ctx, q))
	return q
}

func newSavedStandalone(t *testing.T, repo *GormInvoiceRepository, number string, items ...billing.ItemInput) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewStandaloneInvoice(billing.InvoiceInput{
		Client:  testClient("Standalone Co"),
		TaxRate: decimal.RequireFromString("10"),
	}, issuedAt)
	require.NoError(t, err)
	for _, in := range items {
		_, err := inv.AddItem(in)
		require.NoError(t, err)
	}
	require.NoError(t, inv.AssignNumber(number))
	require.NoError(t, repo.Save(context.Background(), inv))
	return inv
}
