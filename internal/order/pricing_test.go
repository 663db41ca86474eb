package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int
		discount string
		want     string
	}{
		{"NoDiscount", "100.00", 3, "0", "300.00"},
		{"TenPercent", "100.00", 3, "10", "270.00"},
		{"FullDiscount", "100.00", 3, "100", "0.00"},
		{"SingleUnit", "49.99", 1, "0", "49.99"},
		{"FractionalDiscount", "10.00", 1, "12.5", "8.75"},
		{"ZeroPrice", "0.00", 5, "50", "0.00"},
		{"RoundsToMinorUnit", "0.99", 3, "33", "1.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(dec(tt.price), tt.quantity, dec(tt.discount))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestLineDiscount(t *testing.T) {
	// unit_price=100.00, quantity=3, discount=10 -> discount_amount=30.00
	got := LineDiscount(dec("100.00"), 3, dec("10"))
	assert.True(t, dec("30.00").Equal(got), "got %s", got)

	got = LineDiscount(dec("100.00"), 3, dec("0"))
	assert.True(t, decimal.Zero.Equal(got))
}

func TestLineTotalAndDiscountAreComplementary(t *testing.T) {
	// line_total + discount_amount must equal the undiscounted total
	price := dec("100.00")
	full := price.Mul(decimal.NewFromInt(3))

	total := LineTotal(price, 3, dec("10"))
	discount := LineDiscount(price, 3, dec("10"))

	assert.True(t, full.Equal(total.Add(discount)))
}

func TestSumLineTotals(t *testing.T) {
	items := []*OrderItem{
		{UnitPrice: dec("100.00"), Quantity: 3, DiscountPercent: dec("10")},
		{UnitPrice: dec("50.00"), Quantity: 1, DiscountPercent: dec("0")},
	}

	got := SumLineTotals(items)
	require.True(t, dec("320.00").Equal(got), "got %s", got)

	// removing the second item drops the total to the first line only
	got = SumLineTotals(items[:1])
	assert.True(t, dec("270.00").Equal(got))

	assert.True(t, decimal.Zero.Equal(SumLineTotals(nil)))
}

func TestSumLineTotals_Deterministic(t *testing.T) {
	items := []*OrderItem{
		{UnitPrice: dec("19.99"), Quantity: 7, DiscountPercent: dec("15")},
		{UnitPrice: dec("3.33"), Quantity: 2, DiscountPercent: dec("33.33")},
	}

	first := SumLineTotals(items)
	second := SumLineTotals(items)
	assert.True(t, first.Equal(second))
}
