// Package services holds read-side computations over the store.
package services

import (
	"github.com/shopspring/decimal"

	"github.com/diewo77/kinz/internal/models"
)

// InvoiceSource is the part of the store the invoice service reads.
type InvoiceSource interface {
	Invoices() []models.Invoice
	Settings() models.Settings
}

type InvoiceService struct {
	src InvoiceSource
}

func NewInvoiceService(src InvoiceSource) *InvoiceService {
	return &InvoiceService{src: src}
}

// Totals is an invoice amount split by tax, rounded to two decimals.
type Totals struct {
	Net     float64 `json:"net"`
	TaxRate float64 `json:"taxRate"`
	Tax     float64 `json:"tax"`
	Gross   float64 `json:"gross"`
}

// ComputeTotals applies the company tax rate (a percentage) to the
// invoice total.
func (s *InvoiceService) ComputeTotals(inv models.Invoice) Totals {
	rate := s.src.Settings().TaxRate
	net := lineSum(inv)
	tax := net.Mul(decimal.NewFromFloat(rate)).Div(decimal.NewFromInt(100))
	return Totals{
		Net:     net.Round(2).InexactFloat64(),
		TaxRate: rate,
		Tax:     tax.Round(2).InexactFloat64(),
		Gross:   net.Add(tax).Round(2).InexactFloat64(),
	}
}

// Revenue sums the gross totals of paid invoices.
func (s *InvoiceService) Revenue() float64 {
	total := decimal.Zero
	for _, inv := range s.src.Invoices() {
		if inv.Status != models.InvoiceStatusPaid {
			continue
		}
		total = total.Add(decimal.NewFromFloat(s.ComputeTotals(inv).Gross))
	}
	return total.Round(2).InexactFloat64()
}

func lineSum(inv models.Invoice) decimal.Decimal {
	if len(inv.Items) == 0 {
		return decimal.NewFromFloat(inv.Amount)
	}
	sum := decimal.Zero
	for _, l := range inv.Items {
		sum = sum.Add(decimal.NewFromFloat(l.Quantity).Mul(decimal.NewFromFloat(l.UnitPrice)))
	}
	return sum
}
