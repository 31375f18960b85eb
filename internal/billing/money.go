package billing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// All monetary amounts are stored and computed in integer minor units
// (cents). Rounding is half-up at 2 decimals, applied once per
// arithmetic step, never on already-rounded values.

// RoundHalfUp rounds x to the nearest integer, halves away from zero
func RoundHalfUp(x float64) int64 {
	if x >= 0 {
		return int64(math.Floor(x + 0.5))
	}
	return int64(math.Ceil(x - 0.5))
}

// toFloat coerces a decoded JSON value to a float64. Accepts numbers
// and numeric strings; everything else reports false.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// CoerceQuantity interprets a line-item quantity field. Missing or
// malformed values default to 1 rather than failing the request.
func CoerceQuantity(v interface{}) float64 {
	f, ok := toFloat(v)
	if !ok {
		return 1
	}
	return f
}

// CoerceUnitPriceCents interprets a unit price given in major currency
// units (e.g. 12.50 or "12.50") and returns cents. Missing or
// malformed values default to 0.
func CoerceUnitPriceCents(v interface{}) int64 {
	f, ok := toFloat(v)
	if !ok {
		return 0
	}
	return RoundHalfUp(f * 100)
}

// CoerceTaxRate interprets a tax rate percentage. An absent value
// falls back to the caller's default, a malformed one to 0.
func CoerceTaxRate(v interface{}, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	f, ok := toFloat(v)
	if !ok {
		return 0
	}
	return f
}

// FormatCents renders cents as a plain decimal string (no symbol)
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatInvoiceNumber renders a human-readable invoice number from the
// per-user prefix and sequence, e.g. ("INV", 7) -> "INV-0007"
func FormatInvoiceNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}
