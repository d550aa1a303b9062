// Package pricing resolves payment-method dependent unit prices and folds cart
// lines into order totals.
package pricing

import (
	"math"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// UnitPrice returns the price of one unit of p when paid with m. The result is
// rounded to cents and never negative.
func UnitPrice(p d.Product, m d.PaymentMethod) float64 {
	return unitPrice(p, m).InexactFloat64()
}

// BasePrice is the method independent price of one unit of p.
func BasePrice(p d.Product) float64 {
	return basePrice(p).InexactFloat64()
}

// LineTotal is the unit price under m multiplied by the line quantity.
func LineTotal(line d.CartLine, m d.PaymentMethod) float64 {
	if line.Quantity <= 0 {
		return 0
	}
	return unitPrice(line.Product, m).Mul(decimal.NewFromInt(int64(line.Quantity))).InexactFloat64()
}

func unitPrice(p d.Product, m d.PaymentMethod) decimal.Decimal {
	var price decimal.Decimal
	switch m {
	case d.PaymentPix:
		price = pixPrice(p)
	case d.PaymentCredit:
		if p.CardTotal > 0 {
			price = amount(p.CardTotal)
		} else {
			price = amount(p.Price)
		}
	default:
		price = amount(p.Price)
	}
	return clamp(price)
}

// pixPrice prefers an explicit PIX price, then a percentage off the card total
// (or the base price when the product has no card total).
func pixPrice(p d.Product) decimal.Decimal {
	switch {
	case p.PixPrice > 0:
		return amount(p.PixPrice)
	case p.PixDiscountPercent > 0:
		reference := amount(p.Price)
		if p.CardTotal > 0 {
			reference = amount(p.CardTotal)
		}
		factor := decimal.NewFromInt(1).Sub(amount(p.PixDiscountPercent).Div(hundred))
		return reference.Mul(factor)
	default:
		return amount(p.Price)
	}
}

func basePrice(p d.Product) decimal.Decimal {
	return clamp(amount(p.Price))
}

func clamp(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v.Round(2)
}

// amount converts a catalog float, treating NaN and infinities as absent.
func amount(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
