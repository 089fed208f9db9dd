package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt represents one transaction document to be split.
//
// Monetary fields are pointers because the source (OCR, manual entry, sync
// rows) may omit any of them. The stored Total is NOT assumed to reconcile
// with Subtotal + Tax + Tip + Gratuity; the calculator always recomputes an
// authoritative total bottom-up when line items exist.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string

	// Merchant is the merchant name, if known.
	Merchant string

	// Date is the transaction date, if known.
	Date *time.Time

	// Subtotal is the stated pre-tax amount.
	Subtotal *decimal.Decimal

	// DisplaySubtotal is the subtotal as printed on the document. Used for
	// display only, never as a calculation input.
	DisplaySubtotal *decimal.Decimal

	// Tax, Tip and Gratuity are the stated extra charges.
	Tax      *decimal.Decimal
	Tip      *decimal.Decimal
	Gratuity *decimal.Decimal

	// Total is the stated grand total. Trusted only when no line items
	// exist.
	Total *decimal.Decimal

	// TaxIncludedInItems is true when item prices already include tax, in
	// which case no additional tax is distributed.
	TaxIncludedInItems bool

	// IsReceipt distinguishes receipts from other documents such as
	// transportation tickets.
	IsReceipt bool

	// Items are the line items in document order, including soft-deleted
	// ones.
	Items []LineItem

	// People is the full list of known participants, including people with
	// no assigned items. Every person appears in the calculation output.
	People []Person

	// CreatedAt is the Unix timestamp when the receipt was stored.
	CreatedAt int64
}

// LiveItems returns the non-deleted line items in document order.
func (r *Receipt) LiveItems() []LineItem {
	items := make([]LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		if item.DeletedAt == nil {
			items = append(items, item)
		}
	}
	return items
}

// ItemsTotal returns the sum of quantity × pricePerItem over all live items.
func (r *Receipt) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.LiveItems() {
		total = total.Add(item.PretaxTotal())
	}
	return total
}

// HasAssignments reports whether any live item carries at least one live
// assignment.
func (r *Receipt) HasAssignments() bool {
	for _, item := range r.LiveItems() {
		if len(item.Assignees()) > 0 {
			return true
		}
	}
	return false
}

// LineItem represents a single priced entry on a receipt.
type LineItem struct {
	// ID is the externally generated identifier, stable across edits.
	ID string

	// Name is the item description, if known.
	Name string

	// Quantity is a positive decimal, typically but not necessarily an
	// integer. An item with quantity zero contributes nothing to any total.
	Quantity decimal.Decimal

	// PricePerItem is the unit price.
	PricePerItem decimal.Decimal

	// TotalPrice is the stored line total. It may come from OCR and not
	// reconcile with Quantity × PricePerItem, so it is used for display
	// only, never as a calculation input.
	TotalPrice decimal.Decimal

	// DeletedAt is the soft-deletion timestamp (Unix millis), nil for live
	// items.
	DeletedAt *int64

	// Assignments link people to this item, including soft-deleted ones.
	Assignments []Assignment
}

// PretaxTotal returns Quantity × PricePerItem, the only line total the
// calculator ever uses.
func (i *LineItem) PretaxTotal() decimal.Decimal {
	return i.Quantity.Mul(i.PricePerItem)
}

// Assignees returns the distinct people holding a live assignment on this
// item, in assignment order.
func (i *LineItem) Assignees() []Person {
	seen := make(map[string]bool, len(i.Assignments))
	people := make([]Person, 0, len(i.Assignments))
	for _, a := range i.Assignments {
		if a.DeletedAt != nil {
			continue
		}
		key := a.Person.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		people = append(people, a.Person)
	}
	return people
}

// Assignment links one Person to one LineItem, meaning that person shares
// responsibility for the item.
type Assignment struct {
	// ID is the unique identifier for the assignment.
	ID string

	// Person is the participant taking a share of the item.
	Person Person

	// ItemID references the assigned LineItem.
	ItemID string

	// CreatedAt is the Unix millisecond timestamp of creation.
	CreatedAt int64

	// DeletedAt is the soft-deletion timestamp (Unix millis), nil for live
	// assignments.
	DeletedAt *int64
}
