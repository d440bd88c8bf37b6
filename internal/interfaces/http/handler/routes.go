package handler

import (
	"github.com/bizdocs/backend/internal/interfaces/http/router"
)

// QuotationRoutes creates the route group for quotation endpoints
func QuotationRoutes(h *QuotationHandler) *router.DomainGroup {
	group := router.NewDomainGroup("quotations", "/quotations")

	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/by-number/:number", h.GetByNumber)
	group.GET("/:id", h.GetByID)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)

	group.POST("/:id/items", h.AddItem)
	group.PUT("/:id/items/:itemId", h.UpdateItem)
	group.DELETE("/:id/items/:itemId", h.RemoveItem)

	group.POST("/:id/invoice", h.CreateInvoice)

	return group
}

// InvoiceRoutes creates the route group for invoice and payment endpoints
func InvoiceRoutes(h *InvoiceHandler, receipts *ReceiptHandler) *router.DomainGroup {
	group := router.NewDomainGroup("invoices", "/invoices")

	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/by-number/:number", h.GetByNumber)
	group.GET("/:id", h.GetByID)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.PUT("/:id/status", h.SetStatus)
	group.PUT("/:id/stamped", h.SetStamped)

	group.POST("/:id/items", h.AddItem)
	group.PUT("/:id/items/:itemId", h.UpdateItem)
	group.DELETE("/:id/items/:itemId", h.RemoveItem)

	// Payments
	group.GET("/:id/receipts", h.ListReceipts)
	group.POST("/:id/receipts", receipts.Record)

	return group
}

// ReceiptRoutes creates the route group for direct receipt lookups
func ReceiptRoutes(h *ReceiptHandler) *router.DomainGroup {
	group := router.NewDomainGroup("receipts", "/receipts")
	group.GET("/:id", h.GetByID)
	return group
}

// ScanRoutes creates the route group for stamped invoice scans
func ScanRoutes(h *ScanHandler) *router.DomainGroup {
	group := router.NewDomainGroup("stamped_scans", "/invoices")
	group.POST("/:id/stamped/scan", h.Upload)
	group.GET("/:id/stamped/scan", h.Link)
	group.DELETE("/:id/stamped/scan", h.Remove)
	return group
}

// PrintRoutes creates the document download endpoints of all three resources
func PrintRoutes(h *PrintHandler) *router.DomainGroup {
	group := router.NewDomainGroup("documents", "")
	group.GET("/quotations/:id/document", h.Quotation)
	group.GET("/invoices/:id/document", h.Invoice)
	group.GET("/receipts/:id/document", h.Receipt)
	return group
}
