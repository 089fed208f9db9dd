package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/money"
)

// ErrReconciliation signals an internal invariant violation: the rounding
// pass could not make per-person totals sum to the receipt total. With
// integer-cent arithmetic this should be impossible; it is a programming
// defect to be caught by tests, not a user-facing error.
var ErrReconciliation = errors.New("calculator: reconciled totals do not sum to target")

// Reconcile rounds each person's fair total to currency precision and
// redistributes the residual cents so the rounded totals sum exactly to
// target.
//
// Residual cents go one at a time to the people with the largest
// pre-rounding fractional remainder (largest-remainder method), so the
// people whose true share was already closest to rounding up carry the
// extra cent. A negative residual is taken from the smallest remainders
// first. Deviation from the unrounded share is at most one cent per person
// per full distribution cycle.
//
// order fixes the iteration and tie-break order; it must hold exactly the
// keys of fair.
func Reconcile(fair map[string]decimal.Decimal, order []string, target decimal.Decimal) (map[string]decimal.Decimal, error) {
	if len(order) != len(fair) {
		return nil, fmt.Errorf("calculator: order has %d keys, fair has %d", len(order), len(fair))
	}

	targetCents := money.Cents(target)
	if len(order) == 0 {
		if targetCents != 0 {
			return nil, fmt.Errorf("%w: no people to carry %d cents", ErrReconciliation, targetCents)
		}
		return map[string]decimal.Decimal{}, nil
	}

	type entry struct {
		key   string
		cents int64
		// frac is the pre-rounding fractional remainder beyond the floored
		// cent, in [0, 1).
		frac decimal.Decimal
	}

	entries := make([]entry, len(order))
	var sum int64
	for i, key := range order {
		unrounded, ok := fair[key]
		if !ok {
			return nil, fmt.Errorf("calculator: order key %q missing from totals", key)
		}
		scaled := unrounded.Shift(money.Places)
		cents := money.Cents(unrounded)
		entries[i] = entry{
			key:   key,
			cents: cents,
			frac:  scaled.Sub(scaled.Floor()),
		}
		sum += cents
	}

	diff := targetCents - sum

	if diff > 0 {
		// Largest remainder gets the extra cent first.
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].frac.GreaterThan(entries[j].frac)
		})
		for i := 0; diff > 0; i = (i + 1) % len(entries) {
			entries[i].cents++
			diff--
		}
	} else if diff < 0 {
		// Smallest remainder gives a cent back first.
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].frac.LessThan(entries[j].frac)
		})
		for i := 0; diff < 0; i = (i + 1) % len(entries) {
			entries[i].cents--
			diff++
		}
	}

	final := make(map[string]decimal.Decimal, len(entries))
	var check int64
	for _, e := range entries {
		final[e.key] = money.FromCents(e.cents)
		check += e.cents
	}
	if check != targetCents {
		return nil, fmt.Errorf("%w: got %d cents, want %d", ErrReconciliation, check, targetCents)
	}
	return final, nil
}
