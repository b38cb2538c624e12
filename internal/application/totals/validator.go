package totals

import (
	"math"

	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
)

// DefaultTaxRate is the German standard VAT rate applied when an invoice
// carries no explicit rate.
const DefaultTaxRate = 19.0

// Money comparison happens at 2-decimal rounding; anything below half a cent
// after rounding is treated as equal.
const epsilon = 0.005

// Report is the outcome of a consistency check between the stored aggregate
// fields and the values recomputed from the line items. It is advisory:
// callers decide whether to reject, log, or substitute the computed values.
type Report struct {
	Consistent       bool    `json:"consistent"`
	ComputedSubtotal float64 `json:"computedSubtotal"`
	ComputedTax      float64 `json:"computedTax"`
	ComputedTotal    float64 `json:"computedTotal"`
}

// Compute recomputes subtotal, tax and total from the invoice's line items.
// A missing quantity counts as 1, a missing price as 0, a missing tax rate
// as DefaultTaxRate.
func Compute(inv invoice.Invoice) (subtotal, tax, total float64) {
	for _, item := range inv.Items {
		quantity := 1.0
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		price := 0.0
		if item.Price != nil {
			price = *item.Price
		}
		subtotal += quantity * price
	}

	rate := DefaultTaxRate
	if inv.TaxRate != nil {
		rate = *inv.TaxRate
	}

	tax = subtotal * rate / 100
	total = subtotal + tax
	return subtotal, tax, total
}

// Check recomputes the aggregates and compares them against the stored
// fields. An absent stored field compares as zero. The invoice is never
// mutated.
func Check(inv invoice.Invoice) Report {
	subtotal, tax, total := Compute(inv)

	report := Report{
		ComputedSubtotal: subtotal,
		ComputedTax:      tax,
		ComputedTotal:    total,
	}

	report.Consistent = moneyEqual(subtotal, deref(inv.Subtotal)) &&
		moneyEqual(tax, deref(inv.TaxAmount)) &&
		moneyEqual(total, deref(inv.Total))

	return report
}

func moneyEqual(a, b float64) bool {
	return math.Abs(round2(a)-round2(b)) < epsilon
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
