package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/models"
)

// ItemShares holds one live item's pre-tax division among its assignees.
type ItemShares struct {
	// ItemID references the line item.
	ItemID string

	// Name is the item description, carried for per-person breakdowns.
	Name string

	// Shares maps Person.Key() to that person's pre-tax share of the item.
	Shares map[string]decimal.Decimal
}

// SplitItemsResult is the outcome of dividing every live item.
type SplitItemsResult struct {
	// Items holds the division of each assigned item, in document order.
	// Unassigned items do not appear here.
	Items []ItemShares

	// Unassigned is the summed pre-tax total of items with no live
	// assignments. It is never allocated to a person; callers surface it so
	// the user can be warned before finalizing.
	Unassigned decimal.Decimal
}

// SplitItems divides each live item's pre-tax total evenly among the people
// assigned to it.
//
// The line total is always quantity × pricePerItem; the stored totalPrice is
// display-only and would compound upstream rounding errors if used here.
// Division is exact decimal division with no premature rounding; rounding
// happens once, in the reconciliation pass.
func SplitItems(items []models.LineItem) SplitItemsResult {
	result := SplitItemsResult{Unassigned: decimal.Zero}

	for _, item := range items {
		total := item.PretaxTotal()

		assignees := item.Assignees()
		if len(assignees) == 0 {
			result.Unassigned = result.Unassigned.Add(total)
			continue
		}

		share := total.Div(decimal.NewFromInt(int64(len(assignees))))
		shares := make(map[string]decimal.Decimal, len(assignees))
		for _, p := range assignees {
			shares[p.Key()] = share
		}
		result.Items = append(result.Items, ItemShares{
			ItemID: item.ID,
			Name:   item.Name,
			Shares: shares,
		})
	}

	return result
}
