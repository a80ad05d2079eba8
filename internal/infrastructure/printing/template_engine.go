package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	invoiceTemplate      = "invoice.html"
	invoiceEmailTemplate = "invoice_email.html"
)

// TemplateEngine renders the embedded invoice and mail templates
type TemplateEngine struct {
	templates *template.Template
	currency  string
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithCurrency sets the currency symbol used by formatMoney when a document
// does not carry one
func WithCurrency(symbol string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.currency = symbol
	}
}

// NewTemplateEngine parses the embedded templates
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{currency: "$"}
	for _, opt := range opts {
		opt(e)
	}

	tmpl, err := template.New("").Funcs(e.funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse templates", err)
	}
	e.templates = tmpl
	return e, nil
}

// MustNewTemplateEngine is NewTemplateEngine that panics on error
func MustNewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e, err := NewTemplateEngine(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// RenderInvoiceHTML renders the printable invoice
func (e *TemplateEngine) RenderInvoiceHTML(_ context.Context, doc *InvoiceDocument) (string, error) {
	if doc == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "invoice document is nil", nil)
	}
	if doc.Currency == "" {
		doc.Currency = e.currency
	}
	return e.execute(invoiceTemplate, doc)
}

// RenderInvoiceEmail renders the subject and HTML body of the invoice mail
func (e *TemplateEngine) RenderInvoiceEmail(_ context.Context, data *InvoiceEmail) (subject, body string, err error) {
	if data == nil {
		return "", "", NewRenderError(ErrCodeInvalidHTML, "invoice email data is nil", nil)
	}
	if data.Currency == "" {
		data.Currency = e.currency
	}
	body, err = e.execute(invoiceEmailTemplate, data)
	if err != nil {
		return "", "", err
	}
	return InvoiceEmailSubject(data.Number, data.BusinessName), body, nil
}

// InvoiceEmailSubject builds "Invoice INV-000001 from Acme"
func InvoiceEmailSubject(number, businessName string) string {
	subject := "Invoice " + number
	if name := strings.TrimSpace(businessName); name != "" {
		subject += " from " + name
	}
	return subject
}

func (e *TemplateEngine) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) funcMap() template.FuncMap {
	return template.FuncMap{
		"formatMoney":  formatMoney,
		"formatHours":  formatHours,
		"formatRate":   formatRate,
		"formatDate":   formatDate,
		"statusText":   statusText,
		"title":        titleCase,
		"nl2br":        nl2br,
		"now":          time.Now,
		"isZeroAmount": func(d decimal.Decimal) bool { return d.IsZero() },
	}
}

// formatMoney renders 1234.5 with "$" as "$1,234.50"
func formatMoney(symbol string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	return sign + symbol + groupThousands(parts[0]) + "." + parts[1]
}

func groupThousands(digits string) string {
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatHours trims trailing zeros: 2.50 -> "2.5", 3.00 -> "3"
func formatHours(d decimal.Decimal) string {
	return d.Round(2).String()
}

func formatRate(symbol string, d decimal.Decimal) string {
	return formatMoney(symbol, d) + "/h"
}

func formatDate(v any) string {
	var t time.Time
	switch val := v.(type) {
	case time.Time:
		t = val
	case *time.Time:
		if val == nil {
			return ""
		}
		t = *val
	default:
		return fmt.Sprint(v)
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func statusText(status string) string {
	switch status {
	case "draft":
		return "Draft"
	case "sent":
		return "Awaiting payment"
	case "paid":
		return "Paid"
	}
	return titleCase(status)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
