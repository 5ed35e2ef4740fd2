package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/openmart/martcart/internal/domain"
)

// Charges are the order-level amounts added on top of the item subtotal.
// Negative values are clamped to zero during aggregation.
type Charges struct {
	Tax            decimal.Decimal `json:"tax"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	Tip            decimal.Decimal `json:"tip"`
}

// Aggregate folds a line-item collection into a PriceSummary. It is a
// pure function of its inputs: no I/O, no stored state. An empty
// collection yields the all-zero summary.
func Aggregate(items []domain.LineItem, charges Charges, currency string) domain.PriceSummary {
	subtotal := decimal.Zero
	original := decimal.Zero
	totalItems := 0

	for _, li := range items {
		totalItems += li.Quantity
		subtotal = subtotal.Add(li.DiscountedLineTotal())
		original = original.Add(li.OriginalLineTotal())
	}

	tax := clampNonNegative(charges.Tax)
	delivery := clampNonNegative(charges.DeliveryCharge)
	tip := clampNonNegative(charges.Tip)

	return domain.PriceSummary{
		TotalItems:     totalItems,
		Subtotal:       subtotal,
		TotalOriginal:  original,
		TotalDiscount:  original.Sub(subtotal),
		Tax:            tax,
		DeliveryCharge: delivery,
		Tip:            tip,
		GrandTotal:     subtotal.Add(tax).Add(delivery).Add(tip),
		Currency:       currency,
	}
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
