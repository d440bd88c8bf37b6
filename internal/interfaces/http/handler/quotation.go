package handler

import (
	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// QuotationHandler handles quotation endpoints
type QuotationHandler struct {
	BaseHandler
	quotations *billingapp.QuotationService
	invoices   *billingapp.InvoiceService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(quotations *billingapp.QuotationService, invoices *billingapp.InvoiceService) *QuotationHandler {
	return &QuotationHandler{quotations: quotations, invoices: invoices}
}

// Create godoc
//
//	@Summary	Create a quotation
//	@Tags		quotations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		billingapp.CreateQuotationRequest	true	"Quotation"
//	@Success	201		{object}	dto.Response
//	@Failure	400		{object}	dto.Response
//	@Router		/quotations [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	var req billingapp.CreateQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quotation, err := h.quotations.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quotation)
}

// List godoc
//
//	@Summary	List quotations
//	@Tags		quotations
//	@Produce	json
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Param		status		query		string	false	"Status"
//	@Param		search		query		string	false	"Matches number or client"
//	@Success	200			{object}	dto.Response
//	@Router		/quotations [get]
func (h *QuotationHandler) List(c *gin.Context) {
	var filter billingapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	quotations, total, err := h.quotations.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Paging()
	h.SuccessWithMeta(c, quotations, total, page, pageSize)
}

// GetByID returns a quotation with its items and totals
func (h *QuotationHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	quotation, err := h.quotations.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// GetByNumber looks a quotation up by its quote number
func (h *QuotationHandler) GetByNumber(c *gin.Context) {
	quotation, err := h.quotations.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// Update replaces the editable header fields
func (h *QuotationHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quotation, err := h.quotations.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// Delete removes a quotation that no invoice was created from
func (h *QuotationHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.quotations.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddItem adds a line item and returns the recalculated quotation
func (h *QuotationHandler) AddItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quotation, err := h.quotations.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quotation)
}

// UpdateItem replaces a line item
func (h *QuotationHandler) UpdateItem(c *gin.Context) {
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
	quotation, err := h.quotations.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// RemoveItem deletes a line item
func (h *QuotationHandler) RemoveItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseID(c, "itemId")
	if !ok {
		return
	}
	quotation, err := h.quotations.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// CreateInvoice snapshots the quotation into a new invoice.
// The body is optional and only carries a due date.
func (h *QuotationHandler) CreateInvoice(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.CreateInvoiceFromQuotationRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.CreateFromQuotation(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}
