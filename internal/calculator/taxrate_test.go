package calculator

import (
	"testing"

	"github.com/fairsplit/fairsplit/internal/models"
)

func TestTaxRate(t *testing.T) {
	tests := []struct {
		name    string
		receipt *models.Receipt
		want    string
	}{
		{
			name: "tax over stated subtotal",
			receipt: &models.Receipt{
				Subtotal: decPtr("40.00"),
				Tax:      decPtr("3.30"),
			},
			want: "0.0825",
		},
		{
			name: "falls back to items total when subtotal missing",
			receipt: &models.Receipt{
				Tax: decPtr("3.00"),
				Items: []models.LineItem{
					item("i1", "A", "1", "10.00"),
					item("i2", "B", "1", "20.00"),
				},
			},
			want: "0.1",
		},
		{
			name: "tax included in items yields zero",
			receipt: &models.Receipt{
				Subtotal:           decPtr("40.00"),
				Tax:                decPtr("3.30"),
				TaxIncludedInItems: true,
			},
			want: "0",
		},
		{
			name:    "missing tax yields zero",
			receipt: &models.Receipt{Subtotal: decPtr("40.00")},
			want:    "0",
		},
		{
			name: "zero pretax base yields zero",
			receipt: &models.Receipt{
				Subtotal: decPtr("0"),
				Tax:      decPtr("3.30"),
			},
			want: "0",
		},
		{
			name:    "empty receipt yields zero",
			receipt: &models.Receipt{},
			want:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TaxRate(tt.receipt)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("TaxRate() = %s, want %s", got, tt.want)
			}
		})
	}
}
