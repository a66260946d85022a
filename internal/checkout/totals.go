package checkout

import "math"

// Totals is the derived money breakdown of a cart. All values are cents;
// formatting to 2-decimal amounts happens at the response boundary only, so
// many-line carts never accumulate float rounding error.
type Totals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// ComputeTotals derives subtotal, discount and total from a cart and a
// discount percentage. Percentages outside [0,100] are clamped. An empty
// cart yields all zeroes. Pure function: calling it twice on the same input
// gives identical results.
func ComputeTotals(cart Cart, discountPercent float64) Totals {
	if discountPercent < 0 {
		discountPercent = 0
	}
	if discountPercent > 100 {
		discountPercent = 100
	}

	var subtotal int64
	for _, ln := range cart {
		subtotal += ln.UnitPriceCents * int64(ln.Quantity)
	}

	discount := int64(math.Round(float64(subtotal) * discountPercent / 100))

	return Totals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TotalCents:    subtotal - discount,
	}
}

// CentsToAmount converts cents to the decimal representation used on the
// wire with the external API.
func CentsToAmount(c int64) float64 {
	return float64(c) / 100
}

// AmountToCents converts a decimal amount (as parsed from JSON) to cents,
// rounding to the nearest cent.
func AmountToCents(a float64) int64 {
	return int64(math.Round(a * 100))
}
