package domain

// Product carries the catalog fields checkout reads. Optional prices are zero when
// the catalog does not define them.
type Product struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	ImageURL           string  `json:"image_url,omitempty"`
	Price              float64 `json:"price"`
	PixPrice           float64 `json:"pix_price,omitempty"`
	PixDiscountPercent float64 `json:"pix_discount_percent,omitempty"`
	CardTotal          float64 `json:"card_total,omitempty"`
	InstallmentCount   int     `json:"installment_count,omitempty"`
	Stock              int     `json:"stock"`
}
