// Package cart keeps each shopper's cart in Redis.
package cart

import (
	"context"
	"errors"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrInvalidQuantity = errors.New("quantity out of range")
	ErrCartBusy        = errors.New("cart changed concurrently, try again")
)

// MaxQuantity caps a single line.
const MaxQuantity = 999

type CartStore interface {
	Get(ctx context.Context, userID string) (*d.Cart, error)
	// SetQuantity sets the quantity of one line. A quantity <= 0 removes it.
	SetQuantity(ctx context.Context, userID string, productID int64, quantity int) (*d.Cart, error)
	Clear(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}
