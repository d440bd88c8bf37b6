package handler

import (
	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler handles payment endpoints
type ReceiptHandler struct {
	BaseHandler
	receipts *billingapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receipts *billingapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Record godoc
//
//	@Summary		Record a payment
//	@Description	Numbers a receipt, stores it and re-derives the invoice payment status
//	@Tags			receipts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Invoice ID"
//	@Param			request	body		billingapp.RecordReceiptRequest	true	"Payment"
//	@Success		201		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/invoices/{id}/receipts [post]
func (h *ReceiptHandler) Record(c *gin.Context) {
	invoiceID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.RecordReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.receipts.Record(c.Request.Context(), invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID returns a single receipt
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	receipt, err := h.receipts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}
