package printing

import (
	"context"
	"fmt"
	"os"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DocumentPrinter renders printable documents as HTML or PDF
type DocumentPrinter struct {
	html   *TemplateEngine
	fpdf   *FPDFRenderer
	chrome PDFRenderer // nil unless the chromedp engine is selected
	logger *zap.Logger
}

// NewDocumentPrinter creates a printer for the configured PDF engine
func NewDocumentPrinter(cfg config.PrintingConfig, logger *zap.Logger) (*DocumentPrinter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	business := Business{
		Name:           cfg.BusinessName,
		Address:        cfg.BusinessAddress,
		CurrencySymbol: cfg.CurrencySymbol,
	}
	html, err := NewTemplateEngine(business)
	if err != nil {
		return nil, err
	}

	p := &DocumentPrinter{
		html:   html,
		fpdf:   NewFPDFRenderer(business),
		logger: logger.Named("printing"),
	}
	switch cfg.Engine {
	case "", config.PrintingGoFPDF:
	case config.PrintingChromedp:
		p.chrome = NewChromedpRenderer(ChromedpConfig{
			DefaultTimeout: cfg.Timeout,
			RemoteURL:      cfg.ChromeURL,
			NoSandbox:      os.Geteuid() == 0,
			Logger:         p.logger,
		})
	default:
		return nil, NewRenderError(ErrCodeUnsupportedFormat, fmt.Sprintf("unknown printing engine %q", cfg.Engine), nil)
	}
	p.logger.Info("document printer ready", zap.String("engine", p.Engine()))
	return p, nil
}

// WithPDFRenderer swaps the HTML to PDF engine
func (p *DocumentPrinter) WithPDFRenderer(r PDFRenderer) *DocumentPrinter {
	p.chrome = r
	return p
}

// Engine names the active PDF engine
func (p *DocumentPrinter) Engine() string {
	if p.chrome != nil {
		return config.PrintingChromedp
	}
	return config.PrintingGoFPDF
}

// Render lays out the document in the requested format
func (p *DocumentPrinter) Render(ctx context.Context, doc *billingapp.PrintableDocument, format billingapp.PrintFormat) ([]byte, error) {
	switch format {
	case billingapp.PrintFormatHTML:
		page, err := p.html.Render(doc)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	case billingapp.PrintFormatPDF:
		if p.chrome == nil {
			return p.fpdf.Render(ctx, doc)
		}
		page, err := p.html.Render(doc)
		if err != nil {
			return nil, err
		}
		res, err := p.chrome.Render(ctx, &RenderRequest{HTML: page, Title: doc.Title + " " + doc.Number})
		if err != nil {
			return nil, err
		}
		return res.PDFData, nil
	}
	return nil, NewRenderError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format %q", format), nil)
}

// Close releases the browser when chromedp is in use
func (p *DocumentPrinter) Close() error {
	if p.chrome != nil {
		return p.chrome.Close()
	}
	return nil
}

var _ billingapp.DocumentRenderer = (*DocumentPrinter)(nil)
