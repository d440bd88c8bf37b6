package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceBody() map[string]any {
	body := clientBody()
	body["tax_rate"] = "10"
	body["due_date"] = "2024-04-15T00:00:00Z"
	body["items"] = []map[string]any{{"description": "Survey", "quantity": 1, "unit_price": "200.00"}}
	return body
}

func createInvoice(t *testing.T, engine *gin.Engine) document {
	t.Helper()
	w, env := do(t, engine, http.MethodPost, "/api/v1/invoices", invoiceBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[document](t, env)
}

func TestInvoiceHandler_Create(t *testing.T) {
	engine := newTestServer(t)

	inv := createInvoice(t, engine)
	assert.Equal(t, "INV-2024-001", inv.InvoiceNumber)
	assert.Equal(t, "Unpaid", inv.Status)
	assert.Equal(t, "20.00", inv.TotalTax)
	assert.Equal(t, "220.00", inv.GrandTotal)
	assert.Equal(t, "220.00", inv.Outstanding)

	t.Run("due date must follow creation", func(t *testing.T) {
		body := invoiceBody()
		body["due_date"] = "2024-03-15T18:00:00Z"
		w, env := do(t, engine, "POST", "/api/v1/invoices", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.detailFields(), "due_date")
	})

	t.Run("dates must be RFC3339", func(t *testing.T) {
		body := invoiceBody()
		body["due_date"] = "15/04/2024"
		w, env := do(t, engine, "POST", "/api/v1/invoices", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_JSON", env.Error.Code)
	})
}

func TestInvoiceHandler_FromQuotation(t *testing.T) {
	engine := newTestServer(t)
	q := createQuotation(t, engine)

	w, env := do(t, engine, "POST", "/api/v1/quotations/"+q.ID+"/invoice", map[string]any{"due_date": "2024-04-30T00:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[document](t, env)
	assert.Equal(t, "INV-2024-001", inv.InvoiceNumber)
	assert.Equal(t, "150.80", inv.GrandTotal)

	base := "/api/v1/invoices/" + inv.ID

	w, env = do(t, engine, "POST", base+"/items", map[string]any{"description": "Extra", "quantity": 1, "unit_price": "5"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_INVALID_STATE", env.Error.Code)

	w, _ = do(t, engine, "POST", "/api/v1/quotations/7b0c3f55-2f7b-4a8e-9d55-1d6f2f7a6c10/invoice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_Mutations(t *testing.T) {
	engine := newTestServer(t)
	inv := createInvoice(t, engine)
	base := "/api/v1/invoices/" + inv.ID

	t.Run("items", func(t *testing.T) {
		w, env := do(t, engine, "POST", base+"/items", map[string]any{"description": "Parts", "quantity": 2, "unit_price": "15.50"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		updated := decode[document](t, env)
		assert.Equal(t, "254.10", updated.GrandTotal)

		itemID := updated.Items[1].ID
		w, env = do(t, engine, "PUT", base+"/items/"+itemID, map[string]any{"description": "Parts", "quantity": 1, "unit_price": "15.50"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "215.50", decode[document](t, env).Subtotal)

		w, env = do(t, engine, "DELETE", base+"/items/"+itemID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "220.00", decode[document](t, env).GrandTotal)
	})

	t.Run("header", func(t *testing.T) {
		body := clientBody()
		body["tax_rate"] = "0"
		body["due_date"] = "2024-05-01T00:00:00Z"
		w, env := do(t, engine, "PUT", base, body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "200.00", decode[document](t, env).GrandTotal)
	})

	t.Run("manual status", func(t *testing.T) {
		w, env := do(t, engine, "PUT", base+"/status", map[string]any{"status": "Sent"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Sent", decode[document](t, env).Status)

		w, env = do(t, engine, "PUT", base+"/status", map[string]any{"status": "Paid"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "ERR_INVALID_STATE", env.Error.Code)

		w, env = do(t, engine, "PUT", base+"/status", map[string]any{})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.detailFields(), "status")
	})

	t.Run("stamped invoice", func(t *testing.T) {
		w, _ := do(t, engine, "PUT", base+"/stamped", map[string]any{"stamped_invoice": "scans/inv-2024-001.pdf"})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := do(t, engine, "DELETE", base, nil)
		require.Equal(t, http.StatusNoContent, w.Code)
		w, _ = do(t, engine, "DELETE", base, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInvoiceHandler_List(t *testing.T) {
	engine := newTestServer(t)
	createInvoice(t, engine)
	createInvoice(t, engine)

	w, env := do(t, engine, "GET", "/api/v1/invoices?status=Unpaid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]document](t, env), 2)
	assert.Equal(t, int64(2), env.Meta.Total)

	w, env = do(t, engine, "GET", "/api/v1/invoices/by-number/INV-2024-002", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INV-2024-002", decode[document](t, env).InvoiceNumber)
}
