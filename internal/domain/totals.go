package domain

type InstallmentPlan struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// Totals aggregates a whole cart under one payment method.
// At most one of Discount and Surcharge is non-zero.
type Totals struct {
	Subtotal     float64          `json:"subtotal"`
	Total        float64          `json:"total"`
	Discount     float64          `json:"discount"`
	Surcharge    float64          `json:"surcharge"`
	Installments *InstallmentPlan `json:"installments,omitempty"`
}
