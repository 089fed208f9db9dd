// Package calculator is the bill-splitting engine: a pure, deterministic
// set of functions that turn a receipt and its person assignments into
// per-person fair totals that sum exactly to the receipt total.
//
// The engine owns no state, performs no I/O and never mutates its input.
// Repeated invocation on an unchanged receipt yields identical output.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

// PersonItem is one item's contribution to a person's share.
type PersonItem struct {
	ItemID string
	Name   string

	// Amount is this person's unrounded pre-tax share of the item.
	Amount decimal.Decimal
}

// PersonSplit is one person's calculated share of a receipt.
type PersonSplit struct {
	Person models.Person

	// Pretax, Tax, Tip and Gratuity are the unrounded components.
	Pretax   decimal.Decimal
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Gratuity decimal.Decimal

	// Total is the final amount this person owes: rounded to currency
	// precision and reconciled so all totals sum to the receipt total.
	Total decimal.Decimal

	// Items lists the items behind Pretax, in document order.
	Items []PersonItem
}

// Result is the complete outcome of splitting one receipt.
type Result struct {
	// Splits maps Person.Key() to that person's share. Every known person
	// appears, including people with nothing assigned.
	Splits map[string]*PersonSplit

	// People is the deterministic output order: receipt participants first,
	// then any assignees missing from the participant list.
	People []models.Person

	// Total is the authoritative grand total, rounded to currency
	// precision. When live items exist it is recomputed bottom-up
	// (items + tax + tip + gratuity); the stored total field is trusted
	// only when there are no items at all.
	Total decimal.Decimal

	// TaxRate is the effective tax ratio applied to pre-tax shares.
	TaxRate decimal.Decimal

	// UnassignedAmount is the pre-tax portion of the items total that no
	// person is assigned to. It counts toward Total but is allocated to
	// nobody, so the sum of person totals falls short of Total by this
	// amount plus its tax. Callers should warn before finalizing.
	UnassignedAmount decimal.Decimal

	// UseEqualSplit is true when the receipt had no usable item or
	// assignment data and the total was divided evenly instead. The flag
	// carries no calculation semantics; it exists so callers can render an
	// explanatory banner.
	UseEqualSplit bool
}

// ComputeSplit runs the full pipeline: tax-rate resolution, item splitting,
// per-person aggregation and rounding reconciliation. When the receipt has
// no live items, or items but no live assignments, it falls back to an
// equal split of the authoritative total with the same reconciliation
// guarantee.
func ComputeSplit(r *models.Receipt) (*Result, error) {
	people := knownPeople(r)
	live := r.LiveItems()
	auth := authoritativeTotal(r, live)

	if len(live) == 0 || !r.HasAssignments() {
		return equalSplit(r, people, auth)
	}

	rate := TaxRate(r)
	split := SplitItems(live)
	totals := AggregateTotals(split, rate, valueOrZero(r.Tip), valueOrZero(r.Gratuity), people)

	// The unassigned portion (and the tax it would carry) stays in the
	// receipt total but belongs to nobody, so people reconcile against the
	// total minus that gap.
	one := decimal.New(1, 0)
	gap := split.Unassigned.Mul(one.Add(rate))
	target := money.FromCents(money.Cents(auth) - money.Cents(gap))

	final, err := Reconcile(totals.Fair, keysOf(people), target)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Splits:           make(map[string]*PersonSplit, len(people)),
		People:           people,
		Total:            money.Round(auth),
		TaxRate:          rate,
		UnassignedAmount: split.Unassigned,
	}
	for _, p := range people {
		key := p.Key()
		result.Splits[key] = &PersonSplit{
			Person:   p,
			Pretax:   totals.Pretax[key],
			Tax:      totals.Tax[key],
			Tip:      totals.Tip[key],
			Gratuity: totals.Gratuity[key],
			Total:    final[key],
			Items:    personItems(split, key),
		}
	}
	return result, nil
}

// equalSplit divides the authoritative total evenly among all known people
// and feeds the equal shares straight into the reconciliation pass, so
// rounding remainders are still distributed fairly.
func equalSplit(r *models.Receipt, people []models.Person, auth decimal.Decimal) (*Result, error) {
	result := &Result{
		Splits:           make(map[string]*PersonSplit, len(people)),
		People:           people,
		Total:            money.Round(auth),
		TaxRate:          decimal.Zero,
		UnassignedAmount: decimal.Zero,
		UseEqualSplit:    true,
	}
	if len(people) == 0 {
		return result, nil
	}

	share := auth.Div(decimal.NewFromInt(int64(len(people))))
	fair := make(map[string]decimal.Decimal, len(people))
	for _, p := range people {
		fair[p.Key()] = share
	}

	final, err := Reconcile(fair, keysOf(people), auth)
	if err != nil {
		return nil, err
	}

	for _, p := range people {
		key := p.Key()
		result.Splits[key] = &PersonSplit{
			Person: p,
			Pretax: share,
			Total:  final[key],
		}
	}
	return result, nil
}

// authoritativeTotal recomputes the grand total bottom-up when live items
// exist; a possibly stale stored total is trusted only for item-less
// receipts, and failing that the stated fields are summed.
func authoritativeTotal(r *models.Receipt, live []models.LineItem) decimal.Decimal {
	tip := valueOrZero(r.Tip)
	gratuity := valueOrZero(r.Gratuity)

	if len(live) > 0 {
		tax := decimal.Zero
		if !r.TaxIncludedInItems {
			tax = valueOrZero(r.Tax)
		}
		return r.ItemsTotal().Add(tax).Add(tip).Add(gratuity)
	}

	if r.Total != nil {
		return *r.Total
	}
	return valueOrZero(r.Subtotal).Add(valueOrZero(r.Tax)).Add(tip).Add(gratuity)
}

// knownPeople returns the receipt's participants followed by any assignees
// missing from the participant list, deduplicated by key.
func knownPeople(r *models.Receipt) []models.Person {
	seen := make(map[string]bool, len(r.People))
	people := make([]models.Person, 0, len(r.People))
	for _, p := range r.People {
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		people = append(people, p)
	}
	for _, item := range r.LiveItems() {
		for _, p := range item.Assignees() {
			if seen[p.Key()] {
				continue
			}
			seen[p.Key()] = true
			people = append(people, p)
		}
	}
	return people
}

func personItems(split SplitItemsResult, key string) []PersonItem {
	var items []PersonItem
	for _, item := range split.Items {
		if share, ok := item.Shares[key]; ok {
			items = append(items, PersonItem{
				ItemID: item.ItemID,
				Name:   item.Name,
				Amount: share,
			})
		}
	}
	return items
}

func keysOf(people []models.Person) []string {
	keys := make([]string, len(people))
	for i, p := range people {
		keys[i] = p.Key()
	}
	return keys
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
