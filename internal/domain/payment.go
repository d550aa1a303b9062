package domain

import "fmt"

type PaymentMethod string

const (
	PaymentPix    PaymentMethod = "pix"
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCash   PaymentMethod = "cash"
)

// DefaultPaymentMethod is selected until the shopper picks another one.
const DefaultPaymentMethod = PaymentPix

// ParsePaymentMethod maps a wire value to a PaymentMethod. An empty value selects the default.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case "":
		return DefaultPaymentMethod, nil
	case PaymentPix, PaymentCredit, PaymentDebit, PaymentCash:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// Label is the human readable name used in order summaries.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentPix:
		return "PIX"
	case PaymentCredit:
		return "Cartão de crédito"
	case PaymentDebit:
		return "Cartão de débito"
	case PaymentCash:
		return "Dinheiro"
	default:
		return string(m)
	}
}

// String representation (for logging)
func (m PaymentMethod) String() string {
	return string(m)
}
