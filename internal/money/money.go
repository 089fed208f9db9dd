// Package money pins the monetary arithmetic policy for the whole engine.
//
// Every monetary quantity is a github.com/shopspring/decimal value; binary
// floating point never enters a calculation. Rounding is always to 2 decimal
// places, half away from zero, which is exactly what decimal.Decimal.Round
// does. Division that does not terminate (e.g. 10/3) truncates at the
// library's division precision and is squared up later by the reconciliation
// pass, never by the division itself.
package money

import (
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for display and
// reconciliation.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds d to currency precision, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Cents returns d as a count of minimal currency units after rounding.
func Cents(d decimal.Decimal) int64 {
	return Round(d).Mul(hundred).IntPart()
}

// FromCents converts a count of minimal currency units back to a decimal
// amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -Places)
}

// FromFloat converts an external floating point amount to a decimal.
// This is the only sanctioned crossing from float to decimal and belongs at
// the adapter boundary.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Sum adds any number of amounts.
func Sum(ds ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}
