package pricing

// Money represents a monetary value stored in minor units (centavos).
type Money = int64

// Line describes a resolved ticket line used for total calculation.
type Line struct {
	Qty       int
	UnitPrice Money
	// Fixed lines (promotional price) keep their price outside the
	// global discount. Gift lines contribute nothing to the total.
	Fixed bool
	Gift  bool
}

// Summary aggregates computed ticket totals.
type Summary struct {
	Subtotal Money `json:"subtotal"`
	Discount Money `json:"discount"`
	Total    Money `json:"total"`
}

// Compute calculates ticket totals. discountPct applies only to lines that
// are neither fixed nor gifts; gift lines always contribute zero.
func Compute(lines []Line, discountPct int) Summary {
	var eligible, fixed Money
	for _, l := range lines {
		if l.Qty <= 0 || l.Gift {
			continue
		}
		amount := Money(l.Qty) * l.UnitPrice
		if l.Fixed {
			fixed += amount
			continue
		}
		eligible += amount
	}
	if discountPct < 0 {
		discountPct = 0
	}
	if discountPct > 100 {
		discountPct = 100
	}
	discount := (eligible * Money(discountPct)) / 100
	subtotal := eligible + fixed
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
}
