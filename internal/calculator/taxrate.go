package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/models"
)

// TaxRate derives the effective additional tax rate for a receipt as a
// unitless ratio (e.g. 0.0825).
//
// When item prices already include tax, the additional rate is zero so tax
// is never applied twice. Otherwise the rate is tax / pretaxBase, where the
// pretax base is the stated subtotal when present and the recomputed items
// total when not. A zero base or missing tax yields a zero rate.
//
// The rate is later multiplied by each person's pre-tax item total, so tax
// is distributed proportionally to consumption rather than per head.
func TaxRate(r *models.Receipt) decimal.Decimal {
	if r.TaxIncludedInItems {
		return decimal.Zero
	}

	var base decimal.Decimal
	if r.Subtotal != nil {
		base = *r.Subtotal
	} else {
		base = r.ItemsTotal()
	}

	if base.IsZero() || r.Tax == nil || r.Tax.IsZero() {
		return decimal.Zero
	}
	return r.Tax.Div(base)
}
