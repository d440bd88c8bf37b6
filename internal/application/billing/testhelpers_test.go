package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/bizdocs/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type testEnv struct {
	db         *gorm.DB
	now        time.Time
	quotes     *persistence.GormQuotationRepository
	invoiceDB  *persistence.GormInvoiceRepository
	receiptDB  *persistence.GormReceiptRepository
	numbers    *NumberGenerator
	tx         *persistence.TxManager
	quotations *QuotationService
	invoices   *InvoiceService
	receipts   *ReceiptService
	events     *recordingPublisher
}

// newTestEnv wires the services over a private in-memory sqlite database
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     ":memory:",
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:     db.DB,
		now:    in2024,
		quotes: persistence.NewGormQuotationRepository(db.DB),
		tx:     persistence.NewTxManager(db.DB),
		events: &recordingPublisher{},
	}
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	env.invoiceDB, env.receiptDB = invoiceRepo, receiptRepo
	env.numbers = NewNumberGenerator(persistence.NewGormNumberStore(db.DB))

	opts := []ServiceOption{
		WithClock(func() time.Time { return env.now }),
		WithEventPublisher(env.events),
	}
	env.quotations = NewQuotationService(env.quotes, invoiceRepo, env.numbers, env.tx, opts...)
	env.invoices = NewInvoiceService(invoiceRepo, env.quotes, receiptRepo, env.numbers, env.tx, opts...)
	env.receipts = NewReceiptService(receiptRepo, invoiceRepo, env.numbers, env.tx, opts...)
	return env
}

func (e *testEnv) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Table(table).Count(&n).Error)
	return n
}

func client(name string) ClientInput {
	return ClientInput{
		ClientName:        name,
		ClientEmail:       "accounts@example.test",
		ClientAddress:     "4 Mill Lane",
		ClientPhoneNumber: "+441234567890",
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(desc string, qty int, price string) ItemRequest {
	return ItemRequest{Description: desc, Quantity: qty, UnitPrice: dec(price)}
}

func quoteRequest(taxRate string, items ...ItemRequest) CreateQuotationRequest {
	return CreateQuotationRequest{ClientInput: client("Acme Ltd"), TaxRate: dec(taxRate), Items: items}
}

func invoiceRequest(taxRate string, items ...ItemRequest) CreateInvoiceRequest {
	return CreateInvoiceRequest{ClientInput: client("Standalone Co"), TaxRate: dec(taxRate), Items: items}
}

func payment(amount string) RecordReceiptRequest {
	return RecordReceiptRequest{AmountPaid: dec(amount), PaymentMethod: "BANK_TRANSFER"}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		fields[i] = f.Field
	}
	assert.Contains(t, fields, field)
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
