package adapters

import (
	"fmt"
	"time"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

// SyncReceiptRow is the receipt record in the normalized sync shape:
// row-like records joined by foreign keys, money as plain numbers, dates as
// epoch millisecond timestamps.
type SyncReceiptRow struct {
	ID                 string
	Merchant           string
	Date               *int64
	Subtotal           *float64
	DisplaySubtotal    *float64
	Tax                *float64
	Tip                *float64
	Gratuity           *float64
	Total              *float64
	TaxIncludedInItems bool
	IsReceipt          bool
}

// SyncItemRow is one line item record in the normalized shape.
type SyncItemRow struct {
	ID           string
	ReceiptID    string
	Name         string
	Quantity     float64
	PricePerItem float64
	TotalPrice   float64
	DeletedAt    *int64
}

// SyncAssignmentRow links a person row to an item row.
type SyncAssignmentRow struct {
	ID         string
	ItemID     string
	PersonID   string
	PersonName string
	CreatedAt  int64
	DeletedAt  *int64
}

// SyncPersonRow is a participant record in the normalized shape.
type SyncPersonRow struct {
	ID   string
	Name string
}

// FromSyncRows joins normalized sync-layer rows into the internal model,
// validating along the way. Assignments referencing an unknown item are
// rejected rather than dropped: a dangling foreign key means the snapshot
// is not self-consistent.
func FromSyncRows(receipt SyncReceiptRow, items []SyncItemRow, assignments []SyncAssignmentRow, people []SyncPersonRow) (*models.Receipt, error) {
	r := &models.Receipt{
		ID:                 receipt.ID,
		Merchant:           receipt.Merchant,
		TaxIncludedInItems: receipt.TaxIncludedInItems,
		IsReceipt:          receipt.IsReceipt,
	}

	if receipt.Date != nil {
		d := time.UnixMilli(*receipt.Date).UTC()
		r.Date = &d
	}

	var err error
	if r.Subtotal, err = optionalAmount("subtotal", receipt.Subtotal); err != nil {
		return nil, err
	}
	if r.DisplaySubtotal, err = optionalAmount("display_subtotal", receipt.DisplaySubtotal); err != nil {
		return nil, err
	}
	if r.Tax, err = optionalAmount("tax", receipt.Tax); err != nil {
		return nil, err
	}
	if r.Tip, err = optionalAmount("tip", receipt.Tip); err != nil {
		return nil, err
	}
	if r.Gratuity, err = optionalAmount("gratuity", receipt.Gratuity); err != nil {
		return nil, err
	}
	if r.Total, err = optionalAmount("total", receipt.Total); err != nil {
		return nil, err
	}

	for _, p := range people {
		if p.ID == "" && p.Name == "" {
			return nil, invalidf("people", "row needs an id or a name")
		}
		r.People = append(r.People, models.Person{ID: p.ID, Name: p.Name})
	}

	byItem := make(map[string][]models.Assignment, len(items))
	itemIDs := make(map[string]bool, len(items))
	for _, item := range items {
		itemIDs[item.ID] = true
	}
	for _, a := range assignments {
		if !itemIDs[a.ItemID] {
			return nil, invalidf("assignments", "row %s references unknown item %s", a.ID, a.ItemID)
		}
		if a.PersonID == "" && a.PersonName == "" {
			return nil, invalidf("assignments", "row %s needs a person id or name", a.ID)
		}
		byItem[a.ItemID] = append(byItem[a.ItemID], models.Assignment{
			ID:        a.ID,
			Person:    models.Person{ID: a.PersonID, Name: a.PersonName},
			ItemID:    a.ItemID,
			CreatedAt: a.CreatedAt,
			DeletedAt: a.DeletedAt,
		})
	}

	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ID == "" {
			return nil, invalidf(field+".id", "is required")
		}
		if item.ReceiptID != "" && item.ReceiptID != receipt.ID {
			return nil, invalidf(field+".receipt_id", "is %s, want %s", item.ReceiptID, receipt.ID)
		}
		if item.Quantity < 0 {
			return nil, invalidf(field+".quantity", "must not be negative, got %v", item.Quantity)
		}
		if item.PricePerItem < 0 {
			return nil, invalidf(field+".price_per_item", "must not be negative, got %v", item.PricePerItem)
		}
		if item.TotalPrice < 0 {
			return nil, invalidf(field+".total_price", "must not be negative, got %v", item.TotalPrice)
		}
		r.Items = append(r.Items, models.LineItem{
			ID:           item.ID,
			Name:         item.Name,
			Quantity:     money.FromFloat(item.Quantity),
			PricePerItem: money.FromFloat(item.PricePerItem),
			TotalPrice:   money.FromFloat(item.TotalPrice),
			DeletedAt:    item.DeletedAt,
			Assignments:  byItem[item.ID],
		})
	}

	return r, nil
}
