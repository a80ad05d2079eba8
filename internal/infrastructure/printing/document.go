package printing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party is a sender or recipient printed on an invoice
type Party struct {
	Name    string
	Email   string
	Address string
	TaxID   string
	Website string
	LogoURL string
}

// DocumentLine is one billed task
type DocumentLine struct {
	Date        time.Time
	Description string
	Hours       decimal.Decimal
	HourlyRate  decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceDocument is everything the invoice template prints
type InvoiceDocument struct {
	Number    string
	Status    string
	IssueDate time.Time
	DueDate   *time.Time
	From      Party
	To        Party
	Lines     []DocumentLine
	Subtotal  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
	Notes     string
	Currency  string
}

// TotalHours sums the hours of all lines
func (d *InvoiceDocument) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Hours)
	}
	return total
}

// InvoiceEmail is the data for the invoice notification mail
type InvoiceEmail struct {
	Number        string
	BusinessName  string
	RecipientName string
	Total         decimal.Decimal
	Currency      string
	DueDate       *time.Time
	ViewURL       string
}
