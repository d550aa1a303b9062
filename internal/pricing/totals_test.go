package pricing

import (
	"testing"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func linesGen() *rapid.Generator[[]d.CartLine] {
	line := rapid.Custom(func(t *rapid.T) d.CartLine {
		return d.CartLine{
			Product:  productGen().Draw(t, "product"),
			Quantity: rapid.IntRange(1, 20).Draw(t, "quantity"),
		}
	})
	return rapid.SliceOfN(line, 0, 8)
}

func TestAggregate_PixDiscount(t *testing.T) {
	lines := []d.CartLine{{Product: d.Product{ID: 1, Price: 100, PixDiscountPercent: 10}, Quantity: 2}}

	totals := Aggregate(lines, d.PaymentPix)

	assert.InDelta(t, 200.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 180.0, totals.Total, 1e-9)
	assert.InDelta(t, 20.0, totals.Discount, 1e-9)
	assert.Zero(t, totals.Surcharge)
	assert.Nil(t, totals.Installments)
}

func TestAggregate_CreditSurchargeWithInstallments(t *testing.T) {
	lines := []d.CartLine{{
		Product:  d.Product{ID: 1, Price: 100, PixDiscountPercent: 10, CardTotal: 110, InstallmentCount: 5},
		Quantity: 2,
	}}

	totals := Aggregate(lines, d.PaymentCredit)

	assert.InDelta(t, 220.0, totals.Total, 1e-9)
	assert.InDelta(t, 20.0, totals.Surcharge, 1e-9)
	assert.Zero(t, totals.Discount)
	require.NotNil(t, totals.Installments)
	assert.Equal(t, 5, totals.Installments.Count)
	assert.InDelta(t, 44.0, totals.Installments.Value, 1e-9)
}

func TestAggregate_InstallmentsUseLargestCount(t *testing.T) {
	lines := []d.CartLine{
		{Product: d.Product{ID: 1, Price: 50, InstallmentCount: 3}, Quantity: 1},
		{Product: d.Product{ID: 2, Price: 70, InstallmentCount: 10}, Quantity: 1},
	}

	totals := Aggregate(lines, d.PaymentCredit)

	require.NotNil(t, totals.Installments)
	assert.Equal(t, 10, totals.Installments.Count)
	assert.InDelta(t, 12.0, totals.Installments.Value, 1e-9)
}

func TestAggregate_NoPlanForSingleInstallment(t *testing.T) {
	lines := []d.CartLine{{Product: d.Product{ID: 1, Price: 50, InstallmentCount: 1}, Quantity: 1}}
	assert.Nil(t, Aggregate(lines, d.PaymentCredit).Installments)
}

func TestAggregate_NoPlanOutsideCredit(t *testing.T) {
	lines := []d.CartLine{{Product: d.Product{ID: 1, Price: 50, InstallmentCount: 6}, Quantity: 1}}
	for _, m := range []d.PaymentMethod{d.PaymentPix, d.PaymentDebit, d.PaymentCash} {
		assert.Nil(t, Aggregate(lines, m).Installments, m)
	}
}

func TestAggregate_EmptyCart(t *testing.T) {
	for _, m := range allMethods {
		assert.Equal(t, d.Totals{}, Aggregate(nil, m), m)
	}
}

func TestAggregate_SkipsNonPositiveQuantity(t *testing.T) {
	lines := []d.CartLine{{Product: d.Product{ID: 1, Price: 50}, Quantity: 0}}
	assert.Equal(t, d.Totals{}, Aggregate(lines, d.PaymentCash))
}

func TestAggregate_DiscountAndSurchargeExclusive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := linesGen().Draw(t, "lines")
		m := rapid.SampledFrom(allMethods).Draw(t, "method")
		totals := Aggregate(lines, m)
		if totals.Discount > 0 && totals.Surcharge > 0 {
			t.Fatalf("both discount and surcharge positive: %+v", totals)
		}
		if totals.Discount < 0 || totals.Surcharge < 0 {
			t.Fatalf("negative adjustment: %+v", totals)
		}
	})
}

func TestAggregate_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := linesGen().Draw(t, "lines")
		m := rapid.SampledFrom(allMethods).Draw(t, "method")
		first := Aggregate(lines, m)
		second := Aggregate(lines, m)
		if first.Subtotal != second.Subtotal || first.Total != second.Total ||
			first.Discount != second.Discount || first.Surcharge != second.Surcharge {
			t.Fatalf("results differ: %+v vs %+v", first, second)
		}
		if (first.Installments == nil) != (second.Installments == nil) {
			t.Fatalf("installment plans differ")
		}
		if first.Installments != nil && *first.Installments != *second.Installments {
			t.Fatalf("installment plans differ: %+v vs %+v", *first.Installments, *second.Installments)
		}
	})
}

func TestAggregate_InstallmentPlanInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := linesGen().Draw(t, "lines")
		m := rapid.SampledFrom(allMethods).Draw(t, "method")
		totals := Aggregate(lines, m)

		maxCount := 0
		for _, l := range lines {
			if l.Product.InstallmentCount > maxCount {
				maxCount = l.Product.InstallmentCount
			}
		}
		wantPlan := m == d.PaymentCredit && maxCount > 1
		if wantPlan != (totals.Installments != nil) {
			t.Fatalf("plan presence = %v, want %v (method %s, max count %d)", totals.Installments != nil, wantPlan, m, maxCount)
		}
		if totals.Installments != nil {
			product := totals.Installments.Value * float64(totals.Installments.Count)
			if diff := product - totals.Total; diff > 1e-6 || diff < -1e-6 {
				t.Fatalf("installments %v x %d = %v, total %v", totals.Installments.Value, totals.Installments.Count, product, totals.Total)
			}
		}
	})
}
