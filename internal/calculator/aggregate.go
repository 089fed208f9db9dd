package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/models"
)

// Totals holds unrounded per-person totals keyed by Person.Key().
// Every known person appears in every map, with zero values where they have
// no share.
type Totals struct {
	Pretax   map[string]decimal.Decimal
	Tax      map[string]decimal.Decimal
	Tip      map[string]decimal.Decimal
	Gratuity map[string]decimal.Decimal

	// Fair is pretax + tax + tip + gratuity per person, before rounding.
	Fair map[string]decimal.Decimal

	// PretaxSum is the sum of all assigned pre-tax shares.
	PretaxSum decimal.Decimal

	// FairSum is the sum of all fair totals before rounding, for the
	// reconciliation pass.
	FairSum decimal.Decimal
}

// AggregateTotals sums each person's item shares and applies the tax rate,
// tip and gratuity.
//
// Tip and gratuity are distributed proportionally to each person's own
// pre-tax total, normalized against the sum of all assigned pre-tax totals.
// Normalizing by the items total instead would let the unassigned gap dilute
// the tip share of people who are assigned. When nobody is assigned
// anything (the pre-tax sum is zero), tip and gratuity fall back to equal
// division among all known people.
func AggregateTotals(split SplitItemsResult, taxRate, tip, gratuity decimal.Decimal, people []models.Person) Totals {
	totals := Totals{
		Pretax:    make(map[string]decimal.Decimal, len(people)),
		Tax:       make(map[string]decimal.Decimal, len(people)),
		Tip:       make(map[string]decimal.Decimal, len(people)),
		Gratuity:  make(map[string]decimal.Decimal, len(people)),
		Fair:      make(map[string]decimal.Decimal, len(people)),
		PretaxSum: decimal.Zero,
		FairSum:   decimal.Zero,
	}

	for _, p := range people {
		key := p.Key()
		totals.Pretax[key] = decimal.Zero
		totals.Tax[key] = decimal.Zero
		totals.Tip[key] = decimal.Zero
		totals.Gratuity[key] = decimal.Zero
	}

	for _, item := range split.Items {
		for key, share := range item.Shares {
			totals.Pretax[key] = totals.Pretax[key].Add(share)
			totals.PretaxSum = totals.PretaxSum.Add(share)
		}
	}

	n := decimal.NewFromInt(int64(len(people)))
	for _, p := range people {
		key := p.Key()
		pretax := totals.Pretax[key]

		totals.Tax[key] = pretax.Mul(taxRate)

		if totals.PretaxSum.IsPositive() {
			totals.Tip[key] = tip.Mul(pretax).Div(totals.PretaxSum)
			totals.Gratuity[key] = gratuity.Mul(pretax).Div(totals.PretaxSum)
		} else if len(people) > 0 {
			totals.Tip[key] = tip.Div(n)
			totals.Gratuity[key] = gratuity.Div(n)
		}

		fair := pretax.Add(totals.Tax[key]).Add(totals.Tip[key]).Add(totals.Gratuity[key])
		totals.Fair[key] = fair
		totals.FairSum = totals.FairSum.Add(fair)
	}

	return totals
}
