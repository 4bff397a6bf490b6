// Package money wraps shopspring/decimal with the rounding and parsing rules
// used across the ledger.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits stored for every amount.
const Scale = 2

var hundred = decimal.NewFromInt(100)

func init() {
	// amounts travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Parse reads a user supplied amount. Thousands separators and surrounding
// whitespace are ignored.
func Parse(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d.Round(Scale), nil
}

// Sum adds all amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ClampZero returns max(0, d).
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// RoundHalfUp rounds to the nearest integer with ties going up, floor(x + 0.5).
func RoundHalfUp(d decimal.Decimal) int64 {
	return d.Add(decimal.NewFromFloat(0.5)).Floor().IntPart()
}

// Percent returns round(part/whole*100). ok is false when whole is not positive.
func Percent(part, whole decimal.Decimal) (pct int64, ok bool) {
	if !whole.IsPositive() {
		return 0, false
	}
	return RoundHalfUp(part.Div(whole).Mul(hundred)), true
}

// OrZero dereferences an optional amount.
func OrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// Ptr returns a pointer to a copy of d.
func Ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// FromNull converts a nullable column value to an optional amount.
func FromNull(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	return Ptr(n.Decimal)
}

// ToNull converts an optional amount to a nullable column value.
func ToNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// Format renders an amount with two decimals, as exports show it.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// FormatOptional renders a missing amount as "N/A".
func FormatOptional(d *decimal.Decimal) string {
	if d == nil {
		return "N/A"
	}
	return Format(*d)
}
