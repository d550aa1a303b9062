package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/joaocamilod/catalogo-online/internal/pricing"
)

type CartAPI interface {
	Lines(ctx context.Context, userID string) ([]d.CartLine, error)
	SetQuantity(ctx context.Context, userID string, productID int64, quantity int) ([]d.CartLine, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	api     CartAPI
	timeout time.Duration
}

func NewCartHandler(api CartAPI, timeout time.Duration) *CartHandler {
	return &CartHandler{
		api:     api,
		timeout: timeout,
	}
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartLineDTO struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
}

type CartResponseDTO struct {
	UserID   string        `json:"user_id"`
	Items    []CartLineDTO `json:"items"`
	Subtotal float64       `json:"subtotal"`
}

func toCartResponse(userID string, lines []d.CartLine) CartResponseDTO {
	resp := CartResponseDTO{UserID: userID, Items: make([]CartLineDTO, 0, len(lines))}
	for _, l := range lines {
		resp.Items = append(resp.Items, CartLineDTO{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			ImageURL:  l.Product.ImageURL,
			Price:     pricing.BasePrice(l.Product),
			Quantity:  l.Quantity,
			Stock:     l.Product.Stock,
		})
	}
	resp.Subtotal = pricing.Aggregate(lines, d.PaymentCash).Subtotal
	return resp
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lines, err := h.api.Lines(ctx, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(userID, lines))
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	lines, err := h.api.SetQuantity(ctx, userID, productID, *req.Quantity)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(userID, lines))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	lines, err := h.api.SetQuantity(ctx, userID, productID, 0)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(userID, lines))
}

// ClearCart empties the cart. Clients call it once the shopper has seen the order confirmation.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.api.ClearCart(ctx, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
