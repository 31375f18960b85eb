package billing

// LineItem is the canonical line-item shape carried on an invoice.
// Quantity may be fractional (hours, partial units); the unit price and
// derived amount are cents.
type LineItem struct {
	Description    string  `json:"description"`
	Quantity       float64 `json:"quantity"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	AmountCents    int64   `json:"amount_cents"`
}

// Totals is the derived monetary summary of an invoice
type Totals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// NewLineItem builds a line item from raw request values, applying the
// coercion defaults (quantity 1, unit price 0) and computing the amount
func NewLineItem(description string, quantity, unitPrice interface{}) LineItem {
	q := CoerceQuantity(quantity)
	price := CoerceUnitPriceCents(unitPrice)
	return LineItem{
		Description:    description,
		Quantity:       q,
		UnitPriceCents: price,
		AmountCents:    RoundHalfUp(q * float64(price)),
	}
}

// ComputeTotals derives subtotal, tax and total from line items and a
// tax rate percentage. Pure: identical inputs always produce identical
// outputs, so recomputation is idempotent.
func ComputeTotals(items []LineItem, taxRatePercent float64) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += RoundHalfUp(item.Quantity * float64(item.UnitPriceCents))
	}

	tax := RoundHalfUp(float64(subtotal) * taxRatePercent / 100)

	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}
}

// EffectiveTaxRate back-derives the tax rate percentage from stored
// subtotal and tax amounts. Used by recalculation to preserve an
// invoice's tax rate across line-item edits without storing the rate
// on the invoice itself. Returns 0 when the subtotal is 0.
func EffectiveTaxRate(subtotalCents, taxCents int64) float64 {
	if subtotalCents <= 0 {
		return 0
	}
	return float64(taxCents) / float64(subtotalCents) * 100
}
