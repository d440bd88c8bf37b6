package handler

import (
	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Create godoc
//
//	@Summary	Create a standalone invoice
//	@Tags		invoices
//	@Accept		json
//	@Produce	json
//	@Param		request	body		billingapp.CreateInvoiceRequest	true	"Invoice"
//	@Success	201		{object}	dto.Response
//	@Failure	400		{object}	dto.Response
//	@Router		/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req billingapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List godoc
//
//	@Summary	List invoices
//	@Tags		invoices
//	@Produce	json
//	@Param		status	query		string	false	"Payment status"
//	@Success	200		{object}	dto.Response
//	@Router		/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter billingapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	invoices, total, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Paging()
	h.SuccessWithMeta(c, invoices, total, page, pageSize)
}

// GetByID returns an invoice with its totals and payment position
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// GetByNumber looks an invoice up by its invoice number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	invoice, err := h.invoices.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Update replaces the editable header fields
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// SetStatus applies a manual status while nothing has been paid
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.SetInvoiceStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// SetStamped stores or clears the stamped invoice reference
func (h *InvoiceHandler) SetStamped(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.SetStampedInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.SetStampedInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete removes an invoice with its items and receipts
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddItem adds a line item to a standalone invoice
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// UpdateItem replaces a line item of a standalone invoice
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseID(c, "itemId")
	if !ok {
		return
	}
	var req billingapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RemoveItem deletes a line item of a standalone invoice
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseID(c, "itemId")
	if !ok {
		return
	}
	invoice, err := h.invoices.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListReceipts lists the payments recorded against an invoice
func (h *InvoiceHandler) ListReceipts(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	receipts, err := h.invoices.ListReceipts(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipts)
}
