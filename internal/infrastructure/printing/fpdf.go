package printing

import (
	"bytes"
	"context"
	"strconv"
	"time"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/jung-kurt/gofpdf/v2"
	"golang.org/x/text/language"
)

// column widths of the item table, summing to the printable width
var itemColumns = [4]float64{100, 20, 33, 33}

// FPDFRenderer draws documents directly with gofpdf
type FPDFRenderer struct {
	business Business
	money    *MoneyFormatter
}

// NewFPDFRenderer creates a gofpdf renderer
func NewFPDFRenderer(business Business) *FPDFRenderer {
	return &FPDFRenderer{
		business: business,
		money:    NewMoneyFormatter(language.English, business.CurrencySymbol),
	}
}

// Render draws the document on A4 pages
func (r *FPDFRenderer) Render(ctx context.Context, doc *billingapp.PrintableDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetTitle(doc.Title+" "+doc.Number, true)
	pdf.SetCreator(r.business.Name, true)
	// sorted catalog and fixed dates keep identical documents byte-identical
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(documentTime(doc.Date))
	pdf.SetModificationDate(documentTime(doc.Date))
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width := paperWidthMM - 2*marginMM
	half := width / 2

	// header
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(half, 8, tr(r.business.Name), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(half, 8, tr(upperTitle(doc.Title)), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(half, 5, tr(r.business.Address), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, tr(doc.Number), "", 1, "R", false, 0, "")
	if doc.Status != "" {
		pdf.CellFormat(width, 5, tr(doc.Status), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// client and header fields side by side
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(half, 7, "Bill to", "1", 0, "L", true, 0, "")
	pdf.CellFormat(half, 7, "Details", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	client := []string{doc.Client.Name, doc.Client.Address, doc.Client.Email, doc.Client.PhoneNumber}
	rows := max(len(client), len(doc.Fields))
	for i := range rows {
		left, right := "", ""
		if i < len(client) {
			left = client[i]
		}
		if i < len(doc.Fields) {
			right = doc.Fields[i].Label + ": " + doc.Fields[i].Value
		}
		border := "LR"
		if i == rows-1 {
			border = "LRB"
		}
		pdf.CellFormat(half, 6, tr(left), border, 0, "L", false, 0, "")
		pdf.CellFormat(half, 6, tr(right), border, 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	if len(doc.Lines) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		for i, h := range []string{"Description", "Qty", "Unit price", "Total"} {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(itemColumns[i], 7, h, "1", 0, align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, l := range doc.Lines {
			pdf.CellFormat(itemColumns[0], 6, tr(l.Description), "1", 0, "L", false, 0, "")
			pdf.CellFormat(itemColumns[1], 6, strconv.Itoa(l.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(itemColumns[2], 6, tr(r.money.Format(l.UnitPrice)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(itemColumns[3], 6, tr(r.money.Format(l.LineTotal)), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	// totals block aligned with the last two item columns
	labelWidth := itemColumns[2] + 20
	indent := width - labelWidth - itemColumns[3]
	for _, a := range doc.Amounts {
		style := ""
		if a.Strong {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(indent, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(labelWidth, 6, tr(a.Label), "1", 0, "L", a.Strong, 0, "")
		pdf.CellFormat(itemColumns[3], 6, tr(r.money.Format(a.Amount)), "1", 1, "R", a.Strong, 0, "")
	}

	if len(doc.Payments) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(width, 8, "Payments", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		col := width / 4
		for _, p := range doc.Payments {
			pdf.CellFormat(col, 6, tr(p.ReceiptNumber), "1", 0, "L", false, 0, "")
			pdf.CellFormat(col, 6, formatDate(p.Date), "1", 0, "L", false, 0, "")
			pdf.CellFormat(col, 6, tr(p.Method), "1", 0, "L", false, 0, "")
			pdf.CellFormat(col, 6, tr(r.money.Format(p.Amount)), "1", 1, "R", false, 0, "")
		}
	}

	if doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(width, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(width, 5, tr(doc.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "gofpdf output failed", err)
	}
	return buf.Bytes(), nil
}

// documentTime falls back to the current time for undated documents
func documentTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
