package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name    string
		items   []LineItem
		taxRate float64
		want    Totals
	}{
		{
			name:    "empty_invoice",
			items:   nil,
			taxRate: 10,
			want:    Totals{SubtotalCents: 0, TaxCents: 0, TotalCents: 0},
		},
		{
			name: "single_item_no_tax",
			items: []LineItem{
				{Quantity: 2, UnitPriceCents: 1999},
			},
			taxRate: 0,
			want:    Totals{SubtotalCents: 3998, TaxCents: 0, TotalCents: 3998},
		},
		{
			name: "multiple_items_with_tax",
			items: []LineItem{
				{Quantity: 1, UnitPriceCents: 10000},
				{Quantity: 3, UnitPriceCents: 2500},
			},
			taxRate: 20,
			want:    Totals{SubtotalCents: 17500, TaxCents: 3500, TotalCents: 21000},
		},
		{
			name: "fractional_quantity_rounds_half_up",
			items: []LineItem{
				// 1.5 * 33 = 49.5 -> 50
				{Quantity: 1.5, UnitPriceCents: 33},
			},
			taxRate: 0,
			want:    Totals{SubtotalCents: 50, TaxCents: 0, TotalCents: 50},
		},
		{
			name: "tax_rounds_half_up",
			items: []LineItem{
				{Quantity: 1, UnitPriceCents: 1050},
			},
			// 1050 * 7.5% = 78.75 -> 79
			taxRate: 7.5,
			want:    Totals{SubtotalCents: 1050, TaxCents: 79, TotalCents: 1129},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.taxRate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []LineItem{
		{Quantity: 2.5, UnitPriceCents: 1234},
		{Quantity: 1, UnitPriceCents: 999},
	}

	first := ComputeTotals(items, 12.5)
	second := ComputeTotals(items, 12.5)
	assert.Equal(t, first, second)
}

func TestNewLineItemCoercion(t *testing.T) {
	tests := []struct {
		name      string
		quantity  interface{}
		unitPrice interface{}
		wantQty   float64
		wantPrice int64
		wantAmt   int64
	}{
		{
			name:      "numeric_values",
			quantity:  float64(3),
			unitPrice: 19.99,
			wantQty:   3,
			wantPrice: 1999,
			wantAmt:   5997,
		},
		{
			name:      "string_values",
			quantity:  "2",
			unitPrice: "10.50",
			wantQty:   2,
			wantPrice: 1050,
			wantAmt:   2100,
		},
		{
			name:      "malformed_quantity_defaults_to_one",
			quantity:  "abc",
			unitPrice: 5.00,
			wantQty:   1,
			wantPrice: 500,
			wantAmt:   500,
		},
		{
			name:      "empty_price_defaults_to_zero",
			quantity:  "abc",
			unitPrice: "",
			wantQty:   1,
			wantPrice: 0,
			wantAmt:   0,
		},
		{
			name:      "missing_values",
			quantity:  nil,
			unitPrice: nil,
			wantQty:   1,
			wantPrice: 0,
			wantAmt:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewLineItem("Consulting", tt.quantity, tt.unitPrice)
			assert.Equal(t, tt.wantQty, item.Quantity)
			assert.Equal(t, tt.wantPrice, item.UnitPriceCents)
			assert.Equal(t, tt.wantAmt, item.AmountCents)
		})
	}
}

func TestEffectiveTaxRate(t *testing.T) {
	// Stored invoice: subtotal 100.00, tax 10.00 -> effective rate 10%.
	rate := EffectiveTaxRate(10000, 1000)
	assert.InDelta(t, 10.0, rate, 1e-9)

	// Editing the line items to a 250.00 subtotal and recomputing with
	// the back-derived rate yields tax 25.00, total 275.00.
	totals := ComputeTotals([]LineItem{{Quantity: 1, UnitPriceCents: 25000}}, rate)
	assert.Equal(t, int64(25000), totals.SubtotalCents)
	assert.Equal(t, int64(2500), totals.TaxCents)
	assert.Equal(t, int64(27500), totals.TotalCents)

	// Zero subtotal never divides.
	assert.Equal(t, 0.0, EffectiveTaxRate(0, 500))
}
