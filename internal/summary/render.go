// Package summary renders the order message handed to the seller's messaging channel.
package summary

import (
	"fmt"
	"math"
	"strings"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/shopspring/decimal"
)

type Line struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

type Input struct {
	OrderID       string
	SellerName    string
	BuyerName     string
	BuyerPhone    string
	BuyerEmail    string
	Lines         []Line
	Totals        d.Totals
	PaymentMethod d.PaymentMethod
}

// Render builds the order message. Optional fields that are empty drop their line.
func Render(in Input) string {
	var b strings.Builder

	if name := strings.TrimSpace(in.SellerName); name != "" {
		fmt.Fprintf(&b, "Olá, %s! Gostaria de fazer um pedido:\n", name)
	} else {
		b.WriteString("Olá! Gostaria de fazer um pedido:\n")
	}
	if in.OrderID != "" {
		fmt.Fprintf(&b, "Pedido nº %s\n", in.OrderID)
	}

	b.WriteString("\nItens:\n")
	for _, line := range in.Lines {
		total := amount(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity)))
		fmt.Fprintf(&b, "%d× %s — %s\n", line.Quantity, line.Name, formatBRL(total))
	}

	fmt.Fprintf(&b, "\nPagamento: %s\n", in.PaymentMethod.Label())
	switch {
	case in.Totals.Discount > 0:
		fmt.Fprintf(&b, "Desconto: -%s\n", FormatBRL(in.Totals.Discount))
	case in.Totals.Surcharge > 0:
		fmt.Fprintf(&b, "Acréscimo: +%s\n", FormatBRL(in.Totals.Surcharge))
	}
	fmt.Fprintf(&b, "Total: %s\n", FormatBRL(in.Totals.Total))
	if plan := in.Totals.Installments; plan != nil && plan.Count > 1 {
		fmt.Fprintf(&b, "Parcelamento: %d× de %s\n", plan.Count, FormatBRL(plan.Value))
	}

	optional(&b, "Nome", in.BuyerName)
	optional(&b, "Telefone", in.BuyerPhone)
	optional(&b, "E-mail", in.BuyerEmail)

	b.WriteString("\nObrigado!")
	return b.String()
}

func optional(b *strings.Builder, label, value string) {
	if v := strings.TrimSpace(value); v != "" {
		fmt.Fprintf(b, "%s: %s\n", label, v)
	}
}

// FormatBRL formats v as Brazilian reais, e.g. "R$ 1.234,56".
func FormatBRL(v float64) string {
	return formatBRL(amount(v))
}

func formatBRL(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	return "R$ " + sign + grouped.String() + "," + frac
}

func amount(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
