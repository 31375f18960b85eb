package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{0.4, 0},
		{0.5, 1},
		{0.6, 1},
		{1.49, 1},
		{1.5, 2},
		{2.5, 3},
		{-0.5, -1},
		{-1.4, -1},
		{99.999, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundHalfUp(tt.in), "RoundHalfUp(%v)", tt.in)
	}
}

func TestCoerceUnitPriceCents(t *testing.T) {
	assert.Equal(t, int64(1999), CoerceUnitPriceCents(19.99))
	assert.Equal(t, int64(1999), CoerceUnitPriceCents("19.99"))
	assert.Equal(t, int64(500), CoerceUnitPriceCents(5))
	assert.Equal(t, int64(0), CoerceUnitPriceCents(""))
	assert.Equal(t, int64(0), CoerceUnitPriceCents("free"))
	assert.Equal(t, int64(0), CoerceUnitPriceCents(nil))
	assert.Equal(t, int64(0), CoerceUnitPriceCents(true))
}

func TestCoerceQuantity(t *testing.T) {
	assert.Equal(t, 2.0, CoerceQuantity(2.0))
	assert.Equal(t, 2.5, CoerceQuantity("2.5"))
	assert.Equal(t, 1.0, CoerceQuantity("abc"))
	assert.Equal(t, 1.0, CoerceQuantity(nil))
	assert.Equal(t, 1.0, CoerceQuantity(""))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "12.05", FormatCents(1205))
	assert.Equal(t, "1000.00", FormatCents(100000))
	assert.Equal(t, "-3.50", FormatCents(-350))
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-0007", FormatInvoiceNumber("INV", 7))
	assert.Equal(t, "ACME-0123", FormatInvoiceNumber("ACME", 123))
	assert.Equal(t, "INV-12345", FormatInvoiceNumber("INV", 12345))
}
