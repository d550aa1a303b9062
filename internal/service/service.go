// Package service wires the checkout core to the cart, catalog, seller and order stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joaocamilod/catalogo-online/internal/cart"
	"github.com/joaocamilod/catalogo-online/internal/checkout"
	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/joaocamilod/catalogo-online/internal/pricing"
	"github.com/joaocamilod/catalogo-online/internal/sellergate"
	"github.com/joaocamilod/catalogo-online/internal/stock"
)

var ErrProductNotFound = errors.New("product not found")

type Catalog interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]d.Product, error)
}

type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*d.Order, error)
}

type Submitter interface {
	Submit(ctx context.Context, req checkout.Request) *checkout.Attempt
}

type CheckoutService struct {
	carts     cart.CartStore
	catalog   Catalog
	sellers   sellergate.Lister
	orders    OrderReader
	submitter Submitter
	logger    *slog.Logger
}

func NewCheckoutService(
	carts cart.CartStore,
	catalog Catalog,
	sellers sellergate.Lister,
	orders OrderReader,
	submitter Submitter,
	logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		catalog:   catalog,
		sellers:   sellers,
		orders:    orders,
		submitter: submitter,
		logger:    logger,
	}
}

// Lines returns the shopper's cart joined with the catalog, in cart order. A missing
// cart is an empty one. Items whose product left the catalog are dropped.
func (s *CheckoutService) Lines(ctx context.Context, userID string) ([]d.CartLine, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return []d.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return s.hydrate(ctx, c)
}

func (s *CheckoutService) hydrate(ctx context.Context, c *d.Cart) ([]d.CartLine, error) {
	lines := make([]d.CartLine, 0, len(c.Items))
	if len(c.Items) == 0 {
		return lines, nil
	}

	products, err := s.catalog.GetProducts(ctx, c.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	for _, item := range c.Items {
		p, ok := products[item.ProductID]
		if !ok {
			s.logger.WarnContext(ctx, "cart item without catalog product", "user_id", c.UserID, "product_id", item.ProductID)
			continue
		}
		if item.Quantity <= 0 {
			continue
		}
		lines = append(lines, d.CartLine{Product: p, Quantity: item.Quantity})
	}
	return lines, nil
}

// SetQuantity updates one cart line. Adding a product requires it to exist in the catalog.
func (s *CheckoutService) SetQuantity(ctx context.Context, userID string, productID int64, quantity int) ([]d.CartLine, error) {
	if quantity > 0 {
		products, err := s.catalog.GetProducts(ctx, []int64{productID})
		if err != nil {
			return nil, fmt.Errorf("failed to get products: %w", err)
		}
		if _, ok := products[productID]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, productID)
		}
	}

	c, err := s.carts.SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return s.hydrate(ctx, c)
}

func (s *CheckoutService) ClearCart(ctx context.Context, userID string) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

type QuoteLine struct {
	ProductID int64
	Name      string
	ImageURL  string
	UnitPrice float64
	Quantity  int
	LineTotal float64
}

type Quote struct {
	PaymentMethod   d.PaymentMethod
	Lines           []QuoteLine
	Totals          d.Totals
	StockViolations []int64
	CanSubmit       bool
}

// Quote prices the current cart under m. It is recomputed on every call.
func (s *CheckoutService) Quote(ctx context.Context, userID string, m d.PaymentMethod) (*Quote, error) {
	lines, err := s.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		PaymentMethod:   m,
		Lines:           make([]QuoteLine, 0, len(lines)),
		Totals:          pricing.Aggregate(lines, m),
		StockViolations: stock.Insufficient(lines),
	}
	for _, l := range lines {
		q.Lines = append(q.Lines, QuoteLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			ImageURL:  l.Product.ImageURL,
			UnitPrice: pricing.UnitPrice(l.Product, m),
			Quantity:  l.Quantity,
			LineTotal: pricing.LineTotal(l, m),
		})
	}
	q.CanSubmit = len(lines) > 0 && len(q.StockViolations) == 0
	return q, nil
}

// Sellers loads the seller selection for display.
func (s *CheckoutService) Sellers(ctx context.Context) sellergate.View {
	gate := sellergate.New(s.sellers, s.logger)
	defer gate.Close()

	select {
	case <-gate.Enter(ctx):
	case <-ctx.Done():
	}
	return gate.View()
}

type SubmitRequest struct {
	UserID        string
	SellerID      string
	ManualName    string
	PaymentMethod d.PaymentMethod
	BuyerName     string
	BuyerPhone    string
	BuyerEmail    string
}

// Submit confirms the seller choice and places the order. Errors returned here come
// from seller selection or from reading the cart; submission failures are reported
// on the returned Attempt.
func (s *CheckoutService) Submit(ctx context.Context, req SubmitRequest) (*checkout.Attempt, error) {
	choice, err := s.confirmSeller(ctx, req)
	if err != nil {
		return nil, err
	}

	lines, err := s.Lines(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return s.submitter.Submit(ctx, checkout.Request{
		UserID:        req.UserID,
		Lines:         lines,
		PaymentMethod: req.PaymentMethod,
		Seller:        choice.Seller,
		ManualName:    choice.ManualName,
		BuyerName:     req.BuyerName,
		BuyerPhone:    req.BuyerPhone,
		BuyerEmail:    req.BuyerEmail,
	}), nil
}

func (s *CheckoutService) confirmSeller(ctx context.Context, req SubmitRequest) (sellergate.Choice, error) {
	gate := sellergate.New(s.sellers, s.logger)
	defer gate.Close()

	select {
	case <-gate.Enter(ctx):
	case <-ctx.Done():
		return sellergate.Choice{}, ctx.Err()
	}

	view := gate.View()
	switch {
	case req.SellerID != "":
		if view.Mode == sellergate.ModeManual {
			// the shopper picked from a list we can no longer load
			return sellergate.Choice{}, view.LoadErr
		}
		if err := gate.SelectSeller(req.SellerID); err != nil {
			return sellergate.Choice{}, err
		}
	case req.ManualName != "":
		if err := gate.SetManualName(req.ManualName); err != nil {
			return sellergate.Choice{}, err
		}
	}
	return gate.Confirm()
}

func (s *CheckoutService) GetOrder(ctx context.Context, id uuid.UUID) (*d.Order, error) {
	return s.orders.GetOrderByID(ctx, id)
}
