package pricing

import (
	"math"
	"testing"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var allMethods = []d.PaymentMethod{d.PaymentPix, d.PaymentCredit, d.PaymentDebit, d.PaymentCash}

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name    string
		product d.Product
		method  d.PaymentMethod
		want    float64
	}{
		{"pix explicit price", d.Product{Price: 100, PixPrice: 85, PixDiscountPercent: 10}, d.PaymentPix, 85},
		{"pix percent off base", d.Product{Price: 100, PixDiscountPercent: 10}, d.PaymentPix, 90},
		{"pix percent off card total", d.Product{Price: 100, PixDiscountPercent: 10, CardTotal: 110}, d.PaymentPix, 99},
		{"pix falls back to base", d.Product{Price: 100}, d.PaymentPix, 100},
		{"pix negative percent ignored", d.Product{Price: 100, PixDiscountPercent: -20}, d.PaymentPix, 100},
		{"pix discount above 100 clamps", d.Product{Price: 100, PixDiscountPercent: 150}, d.PaymentPix, 0},
		{"pix rounds to cents", d.Product{Price: 19.99, PixDiscountPercent: 7}, d.PaymentPix, 18.59},
		{"credit card total", d.Product{Price: 100, CardTotal: 110}, d.PaymentCredit, 110},
		{"credit falls back to base", d.Product{Price: 100}, d.PaymentCredit, 100},
		{"debit uses base", d.Product{Price: 100, CardTotal: 110, PixPrice: 80}, d.PaymentDebit, 100},
		{"cash uses base", d.Product{Price: 100, CardTotal: 110, PixPrice: 80}, d.PaymentCash, 100},
		{"negative base clamps", d.Product{Price: -5}, d.PaymentCash, 0},
		{"nan base treated as zero", d.Product{Price: math.NaN()}, d.PaymentDebit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, UnitPrice(tt.product, tt.method), 1e-9)
		})
	}
}

func TestLineTotal(t *testing.T) {
	line := d.CartLine{Product: d.Product{Price: 100, PixDiscountPercent: 10}, Quantity: 2}
	assert.InDelta(t, 180.0, LineTotal(line, d.PaymentPix), 1e-9)
	assert.Zero(t, LineTotal(d.CartLine{Product: line.Product}, d.PaymentPix))
}

func productGen() *rapid.Generator[d.Product] {
	return rapid.Custom(func(t *rapid.T) d.Product {
		return d.Product{
			ID:                 rapid.Int64Range(1, 1000).Draw(t, "id"),
			Price:              rapid.Float64Range(-50, 10000).Draw(t, "price"),
			PixPrice:           rapid.Float64Range(-50, 10000).Draw(t, "pix_price"),
			PixDiscountPercent: rapid.Float64Range(-200, 200).Draw(t, "pix_percent"),
			CardTotal:          rapid.Float64Range(-50, 12000).Draw(t, "card_total"),
			InstallmentCount:   rapid.IntRange(0, 24).Draw(t, "installments"),
			Stock:              rapid.IntRange(0, 50).Draw(t, "stock"),
		}
	})
}

func TestUnitPrice_NeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := productGen().Draw(t, "product")
		m := rapid.SampledFrom(allMethods).Draw(t, "method")
		if got := UnitPrice(p, m); got < 0 {
			t.Fatalf("negative unit price %v for %+v under %s", got, p, m)
		}
	})
}
