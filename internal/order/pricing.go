package order

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineTotal computes the discounted total of a single line item:
// unitPrice * (1 - discountPercent/100) * quantity, rounded to the
// currency's minor unit. Inputs are trusted; validation happens at
// the service boundary.
func LineTotal(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) decimal.Decimal {
	discounted := unitPrice.Mul(decimal.NewFromInt(1).Sub(discountPercent.Div(hundred)))
	return discounted.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// LineDiscount reports how much the discount takes off the undiscounted
// line total: unitPrice * (discountPercent/100) * quantity.
func LineDiscount(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) decimal.Decimal {
	perUnit := unitPrice.Mul(discountPercent.Div(hundred))
	return perUnit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// SumLineTotals folds LineTotal over a set of items. The result is what
// orders.total_amount must hold after any line-item mutation.
func SumLineTotals(items []*OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it.UnitPrice, it.Quantity, it.DiscountPercent))
	}
	return total
}
