package api

import (
	"github.com/fairsplit/fairsplit/internal/adapters"
	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/money"
)

// SplitResponse is the JSON rendering of a calculator.Result. Money values
// are fixed-point strings so clients never touch binary floats.
type SplitResponse struct {
	ReceiptID        string           `json:"receipt_id,omitempty"`
	Total            string           `json:"total"`
	TaxRate          string           `json:"tax_rate"`
	UnassignedAmount string           `json:"unassigned_amount"`
	UseEqualSplit    bool             `json:"use_equal_split"`
	Splits           []PersonSplitDTO `json:"splits"`
}

// PersonSplitDTO is one person's share in a SplitResponse.
type PersonSplitDTO struct {
	PersonID string          `json:"person_id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Pretax   string          `json:"pretax"`
	Tax      string          `json:"tax"`
	Tip      string          `json:"tip"`
	Gratuity string          `json:"gratuity"`
	Total    string          `json:"total"`
	Items    []PersonItemDTO `json:"items,omitempty"`
}

// PersonItemDTO is one item's contribution to a person's share.
type PersonItemDTO struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name,omitempty"`
	Amount string `json:"amount"`
}

func toSplitResponse(receiptID string, result *calculator.Result) SplitResponse {
	resp := SplitResponse{
		ReceiptID:        receiptID,
		Total:            result.Total.StringFixed(money.Places),
		TaxRate:          money.FormatPercent(result.TaxRate),
		UnassignedAmount: money.Round(result.UnassignedAmount).StringFixed(money.Places),
		UseEqualSplit:    result.UseEqualSplit,
	}
	for _, p := range result.People {
		split := result.Splits[p.Key()]
		dto := PersonSplitDTO{
			PersonID: p.ID,
			Name:     p.Name,
			Pretax:   money.Round(split.Pretax).StringFixed(money.Places),
			Tax:      money.Round(split.Tax).StringFixed(money.Places),
			Tip:      money.Round(split.Tip).StringFixed(money.Places),
			Gratuity: money.Round(split.Gratuity).StringFixed(money.Places),
			Total:    split.Total.StringFixed(money.Places),
		}
		for _, item := range split.Items {
			dto.Items = append(dto.Items, PersonItemDTO{
				ItemID: item.ItemID,
				Name:   item.Name,
				Amount: money.Round(item.Amount).StringFixed(money.Places),
			})
		}
		resp.Splits = append(resp.Splits, dto)
	}
	return resp
}

// ReceiptResponse pairs a stored receipt with its recomputed split.
type ReceiptResponse struct {
	Receipt adapters.FlatReceipt `json:"receipt"`
	Split   SplitResponse        `json:"split"`
}

// ValidateSettlementRequest proposes per-person settled amounts, keyed the
// same way as SplitResponse (person ID when linked, name when anonymous).
type ValidateSettlementRequest struct {
	Totals map[string]float64 `json:"totals"`
}

// ValidateSettlementResponse reports whether a proposal matches the
// computed split.
type ValidateSettlementResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
