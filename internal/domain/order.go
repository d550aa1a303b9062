package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

// OrderStatusPending is the only status this service writes. Later transitions
// belong to the seller-side backend.
const OrderStatusPending OrderStatus = "pending"

// OrderLine is a denormalized snapshot of a cart line at confirmation time.
type OrderLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}

type Order struct {
	ID            uuid.UUID
	SellerID      string
	SellerName    string
	Lines         []OrderLine
	Total         float64
	BuyerName     string
	BuyerPhone    string
	BuyerEmail    string
	PaymentMethod PaymentMethod
	Status        OrderStatus
	Notified      bool
	CreatedAt     time.Time
}
