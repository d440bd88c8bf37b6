package handler

import (
	"context"
	"fmt"
	"net/http"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrintHandler serves quotations, invoices and receipts as PDF or HTML
type PrintHandler struct {
	BaseHandler
	printer *billingapp.PrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printer *billingapp.PrintService) *PrintHandler {
	return &PrintHandler{printer: printer}
}

type printFunc func(ctx context.Context, id uuid.UUID, format billingapp.PrintFormat) (*billingapp.RenderedDocument, error)

// Quotation godoc
//
//	@Summary	Print a quotation
//	@Tags		quotations
//	@Produce	application/pdf,text/html
//	@Param		id		path	string	true	"Quotation ID"
//	@Param		format	query	string	false	"pdf or html"	default(pdf)
//	@Param		inline	query	bool	false	"Display instead of download"
//	@Success	200
//	@Failure	400	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Router		/quotations/{id}/document [get]
func (h *PrintHandler) Quotation(c *gin.Context) {
	h.serve(c, h.printer.Quotation)
}

// Invoice prints an invoice with its payments
func (h *PrintHandler) Invoice(c *gin.Context) {
	h.serve(c, h.printer.Invoice)
}

// Receipt prints a receipt
func (h *PrintHandler) Receipt(c *gin.Context) {
	h.serve(c, h.printer.Receipt)
}

func (h *PrintHandler) serve(c *gin.Context, print printFunc) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	format, err := billingapp.ParsePrintFormat(c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	doc, err := print(c.Request.Context(), id, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "attachment"
	if c.Query("inline") == "true" {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
