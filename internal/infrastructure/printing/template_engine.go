package printing

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"strings"
	"time"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// Business is the issuer shown at the top of every document
type Business struct {
	Name           string
	Address        string
	CurrencySymbol string
}

// templateData is the root object handed to the document template
type templateData struct {
	Business Business
	Doc      *billingapp.PrintableDocument
}

// TemplateEngine renders printable documents to HTML
type TemplateEngine struct {
	business Business
	money    *MoneyFormatter
	tmpl     *template.Template
}

// NewTemplateEngine parses the embedded document template
func NewTemplateEngine(business Business) (*TemplateEngine, error) {
	e := &TemplateEngine{
		business: business,
		money:    NewMoneyFormatter(language.English, business.CurrencySymbol),
	}
	funcs := template.FuncMap{
		"money": e.money.Format,
		"date":  formatDate,
		"upper": upperTitle,
	}
	tmpl, err := template.New("document.html").Funcs(funcs).ParseFS(templateFS, "templates/document.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse document template", err)
	}
	e.tmpl = tmpl
	return e, nil
}

// Render returns the HTML page for a document
func (e *TemplateEngine) Render(doc *billingapp.PrintableDocument) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, templateData{Business: e.business, Doc: doc}); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute document template", err)
	}
	return buf.String(), nil
}

// upperTitle builds a caser per call; casers are not safe for concurrent use
func upperTitle(s string) string {
	return cases.Upper(language.English).String(s)
}

func formatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

// MoneyFormatter prints amounts with locale digit grouping, for example
// "KSh 1,234.50". Amounts are formatted from their exact decimal value.
type MoneyFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewMoneyFormatter creates a formatter for a language and currency symbol
func NewMoneyFormatter(tag language.Tag, symbol string) *MoneyFormatter {
	return &MoneyFormatter{printer: message.NewPrinter(tag), symbol: strings.TrimSpace(symbol)}
}

// Format renders an amount with two decimal places
func (f *MoneyFormatter) Format(m valueobject.Money) string {
	fixed := m.Amount().StringFixed(valueobject.MoneyPlaces)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	grouped := whole
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		grouped = f.printer.Sprintf("%d", n)
	}
	out := sign + grouped + "." + frac
	if f.symbol != "" {
		out = f.symbol + " " + out
	}
	return out
}
