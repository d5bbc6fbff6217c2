// Package pricing computes monetary amounts for pizza selections.
//
// All amounts are fixed-point decimals with two fractional digits. Rounding
// is half-to-even and is applied after every summation or multiplication
// that produces a monetary value, not deferred to display time, so totals
// do not depend on intermediate precision.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/donprecious/pizza-order-api/internal/domain/catalog"
)

// Round2 rounds a monetary value to two fractional digits, half-to-even.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.RoundBank(2)
}

// ExtrasTotal returns the rounded sum of the extras' unit prices.
func ExtrasTotal(extras []catalog.Extra) decimal.Decimal {
	total := decimal.Zero
	for _, e := range extras {
		total = total.Add(e.Price)
	}
	return Round2(total)
}

// UnitPrice returns the price of a single pizza with the given extras:
// round2(basePrice + sum(extra prices)).
func UnitPrice(pizza *catalog.Pizza, extras []catalog.Extra) decimal.Decimal {
	total := pizza.BasePrice
	for _, e := range extras {
		total = total.Add(e.Price)
	}
	return Round2(total)
}

// LineTotal returns round2(unitPrice × quantity) for a line of identical
// pizzas.
func LineTotal(pizza *catalog.Pizza, extras []catalog.Extra, quantity int) decimal.Decimal {
	return Round2(UnitPrice(pizza, extras).Mul(decimal.NewFromInt(int64(quantity))))
}
