package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func person(name string) models.Person {
	return models.Person{Name: name}
}

// item builds a live line item assigned to the named people.
func item(id, name, quantity, price string, assignees ...string) models.LineItem {
	li := models.LineItem{
		ID:           id,
		Name:         name,
		Quantity:     dec(quantity),
		PricePerItem: dec(price),
	}
	li.TotalPrice = li.PretaxTotal()
	for _, a := range assignees {
		li.Assignments = append(li.Assignments, models.Assignment{
			ID:     id + ":" + a,
			Person: person(a),
			ItemID: id,
		})
	}
	return li
}

func wantTotal(t *testing.T, result *Result, key, want string) {
	t.Helper()
	split := result.Splits[key]
	if split == nil {
		t.Fatalf("no split for %q", key)
	}
	if !split.Total.Equal(dec(want)) {
		t.Errorf("%s total = %s, want %s", key, split.Total, want)
	}
}

func sumOfTotals(result *Result) decimal.Decimal {
	sum := decimal.Zero
	for _, split := range result.Splits {
		sum = sum.Add(split.Total)
	}
	return sum
}

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name         string
		receipt      *models.Receipt
		validateFunc func(t *testing.T, result *Result)
	}{
		{
			name: "single item split between two people",
			receipt: &models.Receipt{
				ID:     "r1",
				People: []models.Person{person("Alice"), person("Bob")},
				Items: []models.LineItem{
					item("i1", "Platter", "1", "30.00", "Alice", "Bob"),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				wantTotal(t, result, "Alice", "15.00")
				wantTotal(t, result, "Bob", "15.00")
				if !result.Total.Equal(dec("30.00")) {
					t.Errorf("total = %s, want 30.00", result.Total)
				}
				if result.UseEqualSplit {
					t.Error("expected itemized split, got equal split")
				}
			},
		},
		{
			name: "unassigned item excluded from person totals but counted in receipt total",
			receipt: &models.Receipt{
				ID:     "r2",
				People: []models.Person{person("Alice")},
				Items: []models.LineItem{
					item("i1", "Sandwich", "1", "10.00", "Alice"),
					item("i2", "Mystery", "1", "5.00"),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				wantTotal(t, result, "Alice", "10.00")
				if !result.Total.Equal(dec("15.00")) {
					t.Errorf("total = %s, want 15.00", result.Total)
				}
				if !result.UnassignedAmount.Equal(dec("5.00")) {
					t.Errorf("unassigned = %s, want 5.00", result.UnassignedAmount)
				}
			},
		},
		{
			name: "proportional tax distribution",
			receipt: &models.Receipt{
				ID:       "r3",
				Subtotal: decPtr("30.00"),
				Tax:      decPtr("3.00"),
				People:   []models.Person{person("Alice"), person("Bob")},
				Items: []models.LineItem{
					item("i1", "Salad", "1", "10.00", "Alice"),
					item("i2", "Steak", "1", "20.00", "Bob"),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				// Alice: pretax 10, tax 1; Bob: pretax 20, tax 2.
				wantTotal(t, result, "Alice", "11.00")
				wantTotal(t, result, "Bob", "22.00")
				if !result.Total.Equal(dec("33.00")) {
					t.Errorf("total = %s, want 33.00", result.Total)
				}
				if !sumOfTotals(result).Equal(dec("33.00")) {
					t.Errorf("sum of totals = %s, want 33.00", sumOfTotals(result))
				}
			},
		},
		{
			name: "tax included in items applies no extra tax",
			receipt: &models.Receipt{
				ID:                 "r4",
				Subtotal:           decPtr("30.00"),
				Tax:                decPtr("3.00"),
				TaxIncludedInItems: true,
				People:             []models.Person{person("Alice"), person("Bob")},
				Items: []models.LineItem{
					item("i1", "Salad", "1", "10.00", "Alice"),
					item("i2", "Steak", "1", "20.00", "Bob"),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				if !result.TaxRate.IsZero() {
					t.Errorf("tax rate = %s, want 0", result.TaxRate)
				}
				for key, split := range result.Splits {
					if !split.Tax.IsZero() {
						t.Errorf("%s tax = %s, want 0", key, split.Tax)
					}
				}
				wantTotal(t, result, "Alice", "10.00")
				wantTotal(t, result, "Bob", "20.00")
				if !result.Total.Equal(dec("30.00")) {
					t.Errorf("total = %s, want 30.00", result.Total)
				}
			},
		},
		{
			name: "tip and gratuity proportional to pretax share",
			receipt: &models.Receipt{
				ID:       "r5",
				Tip:      decPtr("3.00"),
				Gratuity: decPtr("6.00"),
				People:   []models.Person{person("Alice"), person("Bob")},
				Items: []models.LineItem{
					item("i1", "Salad", "1", "10.00", "Alice"),
					item("i2", "Steak", "1", "20.00", "Bob"),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				alice, bob := result.Splits["Alice"], result.Splits["Bob"]
				if !alice.Tip.Equal(dec("1.00")) || !bob.Tip.Equal(dec("2.00")) {
					t.Errorf("tips = %s/%s, want 1.00/2.00", alice.Tip, bob.Tip)
				}
				if !alice.Gratuity.Equal(dec("2.00")) || !bob.Gratuity.Equal(dec("4.00")) {
					t.Errorf("gratuities = %s/%s, want 2.00/4.00", alice.Gratuity, bob.Gratuity)
				}
				wantTotal(t, result, "Alice", "13.00")
				wantTotal(t, result, "Bob", "26.00")
				if !result.Total.Equal(dec("39.00")) {
					t.Errorf("total = %s, want 39.00", result.Total)
				}
			},
		},
		{
			name: "unassigned amount does not dilute tip shares",
			receipt: &models.Receipt{
				ID:     "r6",
				Tip:    decPtr("3.00"),
				People: []models.Person{person("Alice"), person("Bob")},
				Items: []models.LineItem{
					item("i1", "Salad", "1", "10.00", "Alice"),
					item("i2", "Steak", "1", "20.00", "Bob"),
					item("i3", "Mystery", "1", "30.00"),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				// Tip normalized by the assigned sum (30), not the items
				// total (60).
				alice, bob := result.Splits["Alice"], result.Splits["Bob"]
				if !alice.Tip.Equal(dec("1.00")) || !bob.Tip.Equal(dec("2.00")) {
					t.Errorf("tips = %s/%s, want 1.00/2.00", alice.Tip, bob.Tip)
				}
				if !result.UnassignedAmount.Equal(dec("30.00")) {
					t.Errorf("unassigned = %s, want 30.00", result.UnassignedAmount)
				}
			},
		},
		{
			name: "shared item quantity times price, not stored total",
			receipt: &models.Receipt{
				ID:     "r7",
				People: []models.Person{person("Alice"), person("Bob"), person("Cara")},
				Items: []models.LineItem{
					func() models.LineItem {
						li := item("i1", "Wings", "2", "7.50", "Alice", "Bob", "Cara")
						// Stored total disagrees with quantity × price; it
						// must be ignored.
						li.TotalPrice = dec("14.99")
						return li
					}(),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				wantTotal(t, result, "Alice", "5.00")
				wantTotal(t, result, "Bob", "5.00")
				wantTotal(t, result, "Cara", "5.00")
				if !result.Total.Equal(dec("15.00")) {
					t.Errorf("total = %s, want 15.00", result.Total)
				}
			},
		},
		{
			name: "zero quantity item contributes nothing",
			receipt: &models.Receipt{
				ID:     "r8",
				People: []models.Person{person("Alice")},
				Items: []models.LineItem{
					item("i1", "Comped dish", "0", "9.99", "Alice"),
					item("i2", "Coffee", "1", "4.00", "Alice"),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				wantTotal(t, result, "Alice", "4.00")
				if !result.Total.Equal(dec("4.00")) {
					t.Errorf("total = %s, want 4.00", result.Total)
				}
			},
		},
		{
			name: "deleted items and assignments are excluded",
			receipt: &models.Receipt{
				ID:     "r9",
				People: []models.Person{person("Alice"), person("Bob")},
				Items: []models.LineItem{
					item("i1", "Salad", "1", "10.00", "Alice"),
					func() models.LineItem {
						li := item("i2", "Cancelled", "1", "50.00", "Bob")
						ts := int64(1700000000000)
						li.DeletedAt = &ts
						return li
					}(),
					func() models.LineItem {
						li := item("i3", "Steak", "1", "20.00", "Alice", "Bob")
						ts := int64(1700000000000)
						li.Assignments[0].DeletedAt = &ts // Alice dropped off
						return li
					}(),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				wantTotal(t, result, "Alice", "10.00")
				wantTotal(t, result, "Bob", "20.00")
				if !result.Total.Equal(dec("30.00")) {
					t.Errorf("total = %s, want 30.00", result.Total)
				}
			},
		},
		{
			name: "person with no assigned items appears with zero total",
			receipt: &models.Receipt{
				ID:     "r10",
				People: []models.Person{person("Alice"), person("Freeloader")},
				Items: []models.LineItem{
					item("i1", "Salad", "1", "10.00", "Alice"),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				wantTotal(t, result, "Alice", "10.00")
				wantTotal(t, result, "Freeloader", "0.00")
			},
		},
		{
			name: "duplicate assignment of the same person counts once",
			receipt: &models.Receipt{
				ID:     "r11",
				People: []models.Person{person("Alice"), person("Bob")},
				Items: []models.LineItem{
					func() models.LineItem {
						li := item("i1", "Pitcher", "1", "12.00", "Alice", "Bob")
						li.Assignments = append(li.Assignments, models.Assignment{
							ID: "dup", Person: person("Alice"), ItemID: "i1",
						})
						return li
					}(),
				},
			},
			validateFunc: func(t *testing.T, result *Result) {
				wantTotal(t, result, "Alice", "6.00")
				wantTotal(t, result, "Bob", "6.00")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeSplit(tt.receipt)
			if err != nil {
				t.Fatalf("ComputeSplit() error = %v", err)
			}
			tt.validateFunc(t, result)
		})
	}
}

func TestComputeSplitEqualFallback(t *testing.T) {
	t.Run("no items divides stored total three ways", func(t *testing.T) {
		r := &models.Receipt{
			ID:     "r1",
			Total:  decPtr("10.00"),
			People: []models.Person{person("Alice"), person("Bob"), person("Cara")},
		}
		result, err := ComputeSplit(r)
		require.NoError(t, err)
		assert.True(t, result.UseEqualSplit)

		// 10 / 3 leaves one residual cent; exactly one person carries it.
		var centsEach []int64
		for _, split := range result.Splits {
			centsEach = append(centsEach, money.Cents(split.Total))
		}
		assert.ElementsMatch(t, []int64{334, 333, 333}, centsEach)
		assert.True(t, sumOfTotals(result).Equal(dec("10.00")),
			"totals sum to %s, want 10.00", sumOfTotals(result))
	})

	t.Run("items without assignments fall back to equal split", func(t *testing.T) {
		r := &models.Receipt{
			ID:       "r2",
			Subtotal: decPtr("30.00"),
			Tax:      decPtr("3.00"),
			People:   []models.Person{person("Alice"), person("Bob")},
			Items: []models.LineItem{
				item("i1", "Salad", "1", "10.00"),
				item("i2", "Steak", "1", "20.00"),
			},
		}
		result, err := ComputeSplit(r)
		require.NoError(t, err)
		assert.True(t, result.UseEqualSplit)
		assert.True(t, result.Total.Equal(dec("33.00")))
		wantTotal(t, result, "Alice", "16.50")
		wantTotal(t, result, "Bob", "16.50")
	})

	t.Run("single person receives the full total", func(t *testing.T) {
		r := &models.Receipt{
			ID:     "r3",
			Total:  decPtr("23.45"),
			People: []models.Person{person("Owner")},
		}
		result, err := ComputeSplit(r)
		require.NoError(t, err)
		assert.True(t, result.UseEqualSplit)
		wantTotal(t, result, "Owner", "23.45")
	})

	t.Run("no people and no items yields an empty well-formed result", func(t *testing.T) {
		result, err := ComputeSplit(&models.Receipt{ID: "r4"})
		require.NoError(t, err)
		assert.True(t, result.UseEqualSplit)
		assert.Empty(t, result.Splits)
		assert.True(t, result.Total.IsZero())
	})

	t.Run("missing stored total falls back to summed fields", func(t *testing.T) {
		r := &models.Receipt{
			ID:       "r5",
			Subtotal: decPtr("20.00"),
			Tax:      decPtr("2.00"),
			Tip:      decPtr("4.00"),
			People:   []models.Person{person("Alice"), person("Bob")},
		}
		result, err := ComputeSplit(r)
		require.NoError(t, err)
		wantTotal(t, result, "Alice", "13.00")
		wantTotal(t, result, "Bob", "13.00")
	})
}

func TestComputeSplitProperties(t *testing.T) {
	awkward := &models.Receipt{
		ID:       "prop",
		Subtotal: decPtr("91.00"),
		Tax:      decPtr("9.05"),
		Tip:      decPtr("13.37"),
		Gratuity: decPtr("1.99"),
		People:   []models.Person{person("Alice"), person("Bob"), person("Cara")},
		Items: []models.LineItem{
			item("i1", "A", "3", "7.77", "Alice", "Bob"),
			item("i2", "B", "1", "45.50", "Alice", "Bob", "Cara"),
			item("i3", "C", "2", "11.09", "Cara"),
		},
	}

	t.Run("exact sum under awkward tax and tip", func(t *testing.T) {
		result, err := ComputeSplit(awkward)
		require.NoError(t, err)
		assert.Equal(t, money.Cents(result.Total), money.Cents(sumOfTotals(result)),
			"rounded person totals must sum to the receipt total")
	})

	t.Run("non-negativity", func(t *testing.T) {
		result, err := ComputeSplit(awkward)
		require.NoError(t, err)
		for key, split := range result.Splits {
			assert.False(t, split.Total.IsNegative(), "%s total is negative: %s", key, split.Total)
		}
	})

	t.Run("idempotence", func(t *testing.T) {
		first, err := ComputeSplit(awkward)
		require.NoError(t, err)
		second, err := ComputeSplit(awkward)
		require.NoError(t, err)

		require.Equal(t, len(first.Splits), len(second.Splits))
		for key, split := range first.Splits {
			assert.True(t, split.Total.Equal(second.Splits[key].Total),
				"%s: %s != %s", key, split.Total, second.Splits[key].Total)
			assert.True(t, split.Pretax.Equal(second.Splits[key].Pretax))
		}
		assert.True(t, first.Total.Equal(second.Total))
	})

	t.Run("proportionality before rounding", func(t *testing.T) {
		r := &models.Receipt{
			ID:       "prop2",
			Subtotal: decPtr("30.00"),
			Tax:      decPtr("2.47"),
			Tip:      decPtr("5.55"),
			People:   []models.Person{person("Alice"), person("Bob")},
			Items: []models.LineItem{
				item("i1", "Small", "1", "10.00", "Alice"),
				item("i2", "Large", "1", "20.00", "Bob"),
			},
		}
		result, err := ComputeSplit(r)
		require.NoError(t, err)

		two := decimal.NewFromInt(2)
		alice, bob := result.Splits["Alice"], result.Splits["Bob"]
		assert.True(t, bob.Tax.Equal(alice.Tax.Mul(two)),
			"tax %s should be double %s", bob.Tax, alice.Tax)
		assert.True(t, bob.Tip.Equal(alice.Tip.Mul(two)),
			"tip %s should be double %s", bob.Tip, alice.Tip)
	})
}
