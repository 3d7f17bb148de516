package models

import "fmt"

// InvoiceType selects the numbering prefix of an invoice.
type InvoiceType string

const (
	InvoiceInspection InvoiceType = "inspection"
	InvoiceContract   InvoiceType = "contract"
	InvoiceMaterial   InvoiceType = "material"
	InvoicePayment    InvoiceType = "payment"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Prefix returns the number prefix for the type; unknown types use INV.
func (t InvoiceType) Prefix() string {
	switch t {
	case InvoiceInspection:
		return "INS"
	case InvoiceContract:
		return "CON"
	case InvoiceMaterial:
		return "MAT"
	case InvoicePayment:
		return "PAY"
	default:
		return "INV"
	}
}

// InvoiceNumber formats <PREFIX>-<year>-<seq> with seq padded to 3 digits.
func InvoiceNumber(t InvoiceType, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", t.Prefix(), year, seq)
}

// Invoice is an issued document for a customer.
type Invoice struct {
	ID           string        `json:"id"`
	Type         InvoiceType   `json:"type"`
	Number       string        `json:"number"`
	Date         string        `json:"date"`
	Status       InvoiceStatus `json:"status"`
	CustomerID   string        `json:"customerId,omitempty"`
	CustomerName string        `json:"customerName,omitempty"`
	Amount       float64       `json:"amount"`
	Items        []InvoiceLine `json:"items,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	InvoiceFile  string        `json:"invoiceFile,omitempty"`
}

func (i Invoice) GetID() string { return i.ID }

// IsDraft returns true if the invoice is in draft status.
func (i Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// Total sums the lines, falling back to Amount for invoices without lines.
func (i Invoice) Total() float64 {
	if len(i.Items) == 0 {
		return i.Amount
	}
	var total float64
	for _, line := range i.Items {
		total += line.Total()
	}
	return total
}

// InvoiceLine is a line on an invoice.
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

func (l InvoiceLine) Total() float64 {
	return l.Quantity * l.UnitPrice
}
