package money

import (
	"github.com/shopspring/decimal"
)

// Format renders an amount as a display string with a currency symbol,
// e.g. "$12.34" or "-$0.05".
func Format(d decimal.Decimal) string {
	r := Round(d)
	if r.IsNegative() {
		return "-$" + r.Neg().StringFixed(Places)
	}
	return "$" + r.StringFixed(Places)
}

// FormatPercent renders a unitless ratio as a percentage string,
// e.g. 0.0825 -> "8.25%".
func FormatPercent(ratio decimal.Decimal) string {
	return ratio.Mul(hundred).Round(Places).String() + "%"
}
