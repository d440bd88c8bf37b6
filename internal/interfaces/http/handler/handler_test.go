package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/bizdocs/backend/internal/infrastructure/persistence"
	"github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/bizdocs/backend/internal/infrastructure/storage"
	"github.com/bizdocs/backend/internal/interfaces/http/middleware"
	"github.com/bizdocs/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

// envelope mirrors dto.Response with a raw payload so tests can decode it
// into whatever shape the endpoint returns
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func (e envelope) detailFields() []string {
	if e.Error == nil {
		return nil
	}
	out := make([]string, len(e.Error.Details))
	for i, d := range e.Error.Details {
		out[i] = d.Field
	}
	return out
}

// newTestServer wires the billing API over an in-memory sqlite database
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	engine, _ := newTestServerWithScans(t)
	return engine
}

// newTestServerWithScans also returns the in-memory scan storage
func newTestServerWithScans(t *testing.T) (*gin.Engine, *storage.MemoryScanStorage) {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     ":memory:",
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	quotes := persistence.NewGormQuotationRepository(db.DB)
	invoices := persistence.NewGormInvoiceRepository(db.DB)
	receipts := persistence.NewGormReceiptRepository(db.DB)
	tx := persistence.NewTxManager(db.DB)
	numbers := billingapp.NewNumberGenerator(persistence.NewGormNumberStore(db.DB))
	clock := billingapp.WithClock(func() time.Time { return fixedNow })

	quotationSvc := billingapp.NewQuotationService(quotes, invoices, numbers, tx, clock)
	invoiceSvc := billingapp.NewInvoiceService(invoices, quotes, receipts, numbers, tx, clock)
	receiptSvc := billingapp.NewReceiptService(receipts, invoices, numbers, tx, clock)
	scans := storage.NewMemoryScanStorage()
	scanSvc := billingapp.NewStampedScanService(invoices, receipts, scans, tx, 1024, clock)
	printer, err := printing.NewDocumentPrinter(config.PrintingConfig{BusinessName: "Bizdocs", CurrencySymbol: "KSh"}, nil)
	require.NoError(t, err)
	printSvc := billingapp.NewPrintService(quotes, invoices, receipts, printer, clock)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	receiptHandler := NewReceiptHandler(receiptSvc)
	router.NewRouter(engine).Register(
		QuotationRoutes(NewQuotationHandler(quotationSvc, invoiceSvc)),
		InvoiceRoutes(NewInvoiceHandler(invoiceSvc), receiptHandler),
		ReceiptRoutes(receiptHandler),
		ScanRoutes(NewScanHandler(scanSvc)),
		PrintRoutes(NewPrintHandler(printSvc)),
	).Setup()
	return engine, scans
}

func do(t *testing.T, engine *gin.Engine, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type document struct {
	ID            string `json:"id"`
	QuoteNumber   string `json:"quote_number"`
	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"`
	Subtotal      string `json:"subtotal"`
	LabourCost    string `json:"labour_cost"`
	TotalTax      string `json:"total_tax"`
	GrandTotal    string `json:"grand_total"`
	AmountPaid    string `json:"amount_paid"`
	Outstanding   string `json:"outstanding"`
	Items         []struct {
		ID        string `json:"id"`
		LineTotal string `json:"line_total"`
	} `json:"items"`
}

func clientBody() map[string]any {
	return map[string]any{
		"client_name":         "Acme Ltd",
		"client_email":        "accounts@example.test",
		"client_address":      "4 Mill Lane",
		"client_phone_number": "+441234567890",
	}
}

func quotationBody() map[string]any {
	body := clientBody()
	body["tax_rate"] = "16.00"
	body["items"] = []map[string]any{{"description": "Labour", "quantity": 2, "unit_price": "50.00"}}
	return body
}

func createQuotation(t *testing.T, engine *gin.Engine) document {
	t.Helper()
	w, env := do(t, engine, http.MethodPost, "/api/v1/quotations", quotationBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[document](t, env)
}
