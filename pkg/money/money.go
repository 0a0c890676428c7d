// Package money holds helpers for amounts carried as integer cents.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percentage returns pct percent of amount, rounded half up to the
// nearest cent. Amount and the result are in cents.
func Percentage(amount int64, pct float64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// FromDollars converts a decimal dollar amount to cents.
func FromDollars(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ToDollars converts cents to a decimal dollar amount.
func ToDollars(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

// Format renders cents as a dollar string, e.g. 2550 -> "25.50".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(cents int64) int64 {
	if cents < 0 {
		return 0
	}
	return cents
}
