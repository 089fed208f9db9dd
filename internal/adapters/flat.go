package adapters

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

// FlatReceipt is the request/response API shape: one document with nested
// item and assignment arrays, money as plain numbers, dates as ISO-8601
// strings.
type FlatReceipt struct {
	ID                 string       `json:"id"`
	Merchant           string       `json:"merchant,omitempty"`
	Date               string       `json:"date,omitempty"`
	Subtotal           *float64     `json:"subtotal,omitempty"`
	DisplaySubtotal    *float64     `json:"display_subtotal,omitempty"`
	Tax                *float64     `json:"tax,omitempty"`
	Tip                *float64     `json:"tip,omitempty"`
	Gratuity           *float64     `json:"gratuity,omitempty"`
	Total              *float64     `json:"total,omitempty"`
	TaxIncludedInItems bool         `json:"tax_included_in_items,omitempty"`
	IsReceipt          bool         `json:"is_receipt,omitempty"`
	Items              []FlatItem   `json:"items"`
	People             []FlatPerson `json:"people"`
}

// FlatItem is one line item in the flat shape.
type FlatItem struct {
	ID           string           `json:"id"`
	Name         string           `json:"name,omitempty"`
	Quantity     float64          `json:"quantity"`
	PricePerItem float64          `json:"price_per_item"`
	TotalPrice   *float64         `json:"total_price,omitempty"`
	DeletedAt    *int64           `json:"deleted_at,omitempty"`
	Assignments  []FlatAssignment `json:"assignments,omitempty"`
}

// FlatAssignment links a person to an item in the flat shape.
type FlatAssignment struct {
	ID         string `json:"id"`
	PersonID   string `json:"person_id,omitempty"`
	PersonName string `json:"person_name,omitempty"`
	CreatedAt  int64  `json:"created_at,omitempty"`
	DeletedAt  *int64 `json:"deleted_at,omitempty"`
}

// FlatPerson is a participant in the flat shape. ID is empty for anonymous
// participants identified by name only.
type FlatPerson struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// FromFlatReceipt validates a flat API document and converts it to the
// internal model.
func FromFlatReceipt(in FlatReceipt) (*models.Receipt, error) {
	r := &models.Receipt{
		ID:                 in.ID,
		Merchant:           in.Merchant,
		TaxIncludedInItems: in.TaxIncludedInItems,
		IsReceipt:          in.IsReceipt,
	}

	if in.Date != "" {
		d, err := time.Parse(time.RFC3339, in.Date)
		if err != nil {
			return nil, invalidf("date", "is not an RFC 3339 timestamp: %v", err)
		}
		r.Date = &d
	}

	var err error
	if r.Subtotal, err = optionalAmount("subtotal", in.Subtotal); err != nil {
		return nil, err
	}
	if r.DisplaySubtotal, err = optionalAmount("display_subtotal", in.DisplaySubtotal); err != nil {
		return nil, err
	}
	if r.Tax, err = optionalAmount("tax", in.Tax); err != nil {
		return nil, err
	}
	if r.Tip, err = optionalAmount("tip", in.Tip); err != nil {
		return nil, err
	}
	if r.Gratuity, err = optionalAmount("gratuity", in.Gratuity); err != nil {
		return nil, err
	}
	if r.Total, err = optionalAmount("total", in.Total); err != nil {
		return nil, err
	}

	for i, p := range in.People {
		if p.ID == "" && p.Name == "" {
			return nil, invalidf(fmt.Sprintf("people[%d]", i), "needs an id or a name")
		}
		r.People = append(r.People, models.Person{ID: p.ID, Name: p.Name})
	}

	for i, item := range in.Items {
		converted, err := convertFlatItem(i, item)
		if err != nil {
			return nil, err
		}
		r.Items = append(r.Items, converted)
	}

	return r, nil
}

// ToFlatReceipt converts an internal receipt back to the flat API shape.
func ToFlatReceipt(r *models.Receipt) FlatReceipt {
	out := FlatReceipt{
		ID:                 r.ID,
		Merchant:           r.Merchant,
		Subtotal:           floatPtr(r.Subtotal),
		DisplaySubtotal:    floatPtr(r.DisplaySubtotal),
		Tax:                floatPtr(r.Tax),
		Tip:                floatPtr(r.Tip),
		Gratuity:           floatPtr(r.Gratuity),
		Total:              floatPtr(r.Total),
		TaxIncludedInItems: r.TaxIncludedInItems,
		IsReceipt:          r.IsReceipt,
	}
	if r.Date != nil {
		out.Date = r.Date.Format(time.RFC3339)
	}
	for _, p := range r.People {
		out.People = append(out.People, FlatPerson{ID: p.ID, Name: p.Name})
	}
	for _, item := range r.Items {
		total, _ := item.TotalPrice.Float64()
		flat := FlatItem{
			ID:         item.ID,
			Name:       item.Name,
			TotalPrice: &total,
			DeletedAt:  item.DeletedAt,
		}
		flat.Quantity, _ = item.Quantity.Float64()
		flat.PricePerItem, _ = item.PricePerItem.Float64()
		for _, a := range item.Assignments {
			flat.Assignments = append(flat.Assignments, FlatAssignment{
				ID:         a.ID,
				PersonID:   a.Person.ID,
				PersonName: a.Person.Name,
				CreatedAt:  a.CreatedAt,
				DeletedAt:  a.DeletedAt,
			})
		}
		out.Items = append(out.Items, flat)
	}
	return out
}

func convertFlatItem(index int, item FlatItem) (models.LineItem, error) {
	field := fmt.Sprintf("items[%d]", index)
	if item.ID == "" {
		return models.LineItem{}, invalidf(field+".id", "is required")
	}
	if item.Quantity < 0 {
		return models.LineItem{}, invalidf(field+".quantity", "must not be negative, got %v", item.Quantity)
	}
	if item.PricePerItem < 0 {
		return models.LineItem{}, invalidf(field+".price_per_item", "must not be negative, got %v", item.PricePerItem)
	}

	converted := models.LineItem{
		ID:           item.ID,
		Name:         item.Name,
		Quantity:     money.FromFloat(item.Quantity),
		PricePerItem: money.FromFloat(item.PricePerItem),
		DeletedAt:    item.DeletedAt,
	}
	if item.TotalPrice != nil {
		if *item.TotalPrice < 0 {
			return models.LineItem{}, invalidf(field+".total_price", "must not be negative, got %v", *item.TotalPrice)
		}
		converted.TotalPrice = money.FromFloat(*item.TotalPrice)
	} else {
		converted.TotalPrice = converted.PretaxTotal()
	}

	for j, a := range item.Assignments {
		if a.PersonID == "" && a.PersonName == "" {
			return models.LineItem{}, invalidf(fmt.Sprintf("%s.assignments[%d]", field, j), "needs a person_id or person_name")
		}
		converted.Assignments = append(converted.Assignments, models.Assignment{
			ID:        a.ID,
			Person:    models.Person{ID: a.PersonID, Name: a.PersonName},
			ItemID:    item.ID,
			CreatedAt: a.CreatedAt,
			DeletedAt: a.DeletedAt,
		})
	}
	return converted, nil
}

func optionalAmount(field string, f *float64) (*decimal.Decimal, error) {
	if f == nil {
		return nil, nil
	}
	if *f < 0 {
		return nil, invalidf(field, "must not be negative, got %v", *f)
	}
	d := money.FromFloat(*f)
	return &d, nil
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}
