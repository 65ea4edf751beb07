package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToMinor converts a major-unit amount (rupees) to integer minor units (paise).
func ToMinor(amount float64) (int64, error) {
	d := decimal.NewFromFloat(amount)
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount %s is not positive", d.String())
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}

// FromMinor converts integer minor units back to a major-unit amount.
func FromMinor(minor int64) float64 {
	f, _ := decimal.NewFromInt(minor).Div(hundred).Float64()
	return f
}

// LineTotal is price × quantity.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// SameAmount compares two currency amounts at two-decimal precision.
func SameAmount(a, b decimal.Decimal) bool {
	return a.Round(2).Equal(b.Round(2))
}

// Float returns d rounded to two decimals as a float64.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
