package stock

import (
	"errors"
	"fmt"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientError lists the products whose requested quantity exceeds the stock.
type InsufficientError struct {
	ProductIDs []int64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock for products %v", e.ProductIDs)
}

func (e *InsufficientError) Unwrap() error {
	return ErrInsufficientStock
}

// Insufficient returns, in cart order, the product ids of lines asking for more
// units than the product has in stock. Products with zero stock are not checked
// here; availability of those is a catalog display concern.
func Insufficient(lines []d.CartLine) []int64 {
	var ids []int64
	for _, line := range lines {
		if line.Product.Stock > 0 && line.Quantity > line.Product.Stock {
			ids = append(ids, line.Product.ID)
		}
	}
	return ids
}

// Check returns an *InsufficientError when any line fails Insufficient.
func Check(lines []d.CartLine) error {
	if ids := Insufficient(lines); len(ids) > 0 {
		return &InsufficientError{ProductIDs: ids}
	}
	return nil
}
