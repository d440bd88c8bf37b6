package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receiptResult struct {
	Receipt struct {
		ID            string `json:"id"`
		ReceiptNumber string `json:"receipt_number"`
		AmountPaid    string `json:"amount_paid"`
		PaymentMethod string `json:"payment_method"`
	} `json:"receipt"`
	Invoice document `json:"invoice"`
}

func TestReceiptHandler_Record(t *testing.T) {
	engine := newTestServer(t)
	q := createQuotation(t, engine)
	w, env := do(t, engine, "POST", "/api/v1/quotations/"+q.ID+"/invoice", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	inv := decode[document](t, env)
	receipts := "/api/v1/invoices/" + inv.ID + "/receipts"

	w, env = do(t, engine, "POST", receipts, map[string]any{"amount_paid": "50.00", "payment_method": "CASH"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[receiptResult](t, env)
	assert.Equal(t, "RCT-2024-001", first.Receipt.ReceiptNumber)
	assert.Equal(t, "50.00", first.Receipt.AmountPaid)
	assert.Equal(t, "Partially Paid", first.Invoice.Status)
	assert.Equal(t, "100.80", first.Invoice.Outstanding)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"above outstanding", map[string]any{"amount_paid": "100.81", "payment_method": "CASH"}, "amount_paid"},
		{"three decimals", map[string]any{"amount_paid": "1.005", "payment_method": "CASH"}, "amount_paid"},
		{"unknown method", map[string]any{"amount_paid": "1.00", "payment_method": "BARTER"}, "payment_method"},
		{"missing method", map[string]any{"amount_paid": "1.00"}, "payment_method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, engine, "POST", receipts, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, env.detailFields(), tt.field)
		})
	}

	w, env = do(t, engine, "POST", receipts, map[string]any{"amount_paid": "100.80", "payment_method": "BANK_TRANSFER"})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[receiptResult](t, env)
	assert.Equal(t, "RCT-2024-002", second.Receipt.ReceiptNumber)
	assert.Equal(t, "Paid", second.Invoice.Status)
	assert.Equal(t, "0.00", second.Invoice.Outstanding)

	w, env = do(t, engine, "GET", receipts, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env), 2)

	w, env = do(t, engine, "GET", "/api/v1/receipts/"+first.Receipt.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CASH", decode[map[string]any](t, env)["payment_method"])

	w, _ = do(t, engine, "GET", "/api/v1/receipts/7b0c3f55-2f7b-4a8e-9d55-1d6f2f7a6c10", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceiptHandler_UnknownInvoice(t *testing.T) {
	engine := newTestServer(t)
	w, env := do(t, engine, "POST", "/api/v1/invoices/7b0c3f55-2f7b-4a8e-9d55-1d6f2f7a6c10/receipts",
		map[string]any{"amount_paid": "1.00", "payment_method": "CASH"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
}
