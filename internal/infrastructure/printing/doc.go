// Package printing lays out quotations, invoices and receipts as HTML and
// PDF.
//
// HTML comes from an embedded html/template. PDF is produced by one of two
// engines: gofpdf draws the document natively without external processes,
// chromedp prints the HTML through a headless Chrome.
//
//	printer, err := NewDocumentPrinter(cfg.Printing, logger)
//	if err != nil {
//	    return err
//	}
//	defer printer.Close()
//
//	pdf, err := printer.Render(ctx, doc, billingapp.PrintFormatPDF)
package printing
