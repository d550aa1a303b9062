package pricing

import (
	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregate folds cart lines into totals for the selected payment method.
//
// Credit purchases get a single order-wide installment plan driven by the line
// with the largest installment count; there is no plan when that count is 1 or less.
func Aggregate(lines []d.CartLine, m d.PaymentMethod) d.Totals {
	subtotal := decimal.Zero
	total := decimal.Zero
	maxCount := 0

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(basePrice(line.Product).Mul(qty))
		total = total.Add(unitPrice(line.Product, m).Mul(qty))
		if line.Product.InstallmentCount > maxCount {
			maxCount = line.Product.InstallmentCount
		}
	}

	totals := d.Totals{
		Subtotal: subtotal.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}

	diff := total.Sub(subtotal)
	switch {
	case diff.IsNegative():
		totals.Discount = diff.Neg().InexactFloat64()
	case diff.IsPositive():
		totals.Surcharge = diff.InexactFloat64()
	}

	if m == d.PaymentCredit && maxCount > 1 {
		totals.Installments = &d.InstallmentPlan{
			Count: maxCount,
			Value: total.Div(decimal.NewFromInt(int64(maxCount))).InexactFloat64(),
		}
	}

	return totals
}
