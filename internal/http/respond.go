package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/joaocamilod/catalogo-online/internal/cart"
	"github.com/joaocamilod/catalogo-online/internal/checkout"
	"github.com/joaocamilod/catalogo-online/internal/repository/orders"
	"github.com/joaocamilod/catalogo-online/internal/sellergate"
	"github.com/joaocamilod/catalogo-online/internal/service"
	"github.com/joaocamilod/catalogo-online/internal/stock"
)

type ErrorResponse struct {
	Error      string  `json:"error"`
	Code       string  `json:"code,omitempty"`
	Details    string  `json:"details,omitempty"`
	Retryable  bool    `json:"retryable,omitempty"`
	ProductIDs []int64 `json:"product_ids,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps service errors to HTTP status codes.
func handleError(w http.ResponseWriter, err error) {
	var insufficient *stock.InsufficientError
	resp := ErrorResponse{Error: err.Error(), Retryable: checkout.IsRetryable(err)}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &insufficient):
		status, resp.Code = http.StatusConflict, "insufficient_stock"
		resp.ProductIDs = insufficient.ProductIDs
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		status, resp.Code = http.StatusConflict, "submission_in_progress"
	case errors.Is(err, checkout.ErrEmptyCart):
		status, resp.Code = http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, sellergate.ErrNoSellerChosen):
		status, resp.Code = http.StatusUnprocessableEntity, "no_seller_chosen"
	case errors.Is(err, sellergate.ErrInvalidSellerPhone):
		status, resp.Code = http.StatusUnprocessableEntity, "invalid_seller_phone"
	case errors.Is(err, sellergate.ErrUnknownSeller):
		status, resp.Code = http.StatusUnprocessableEntity, "unknown_seller"
	case errors.Is(err, sellergate.ErrManualNameUnavailable):
		status, resp.Code = http.StatusUnprocessableEntity, "manual_name_unavailable"
	case errors.Is(err, sellergate.ErrNoActiveSellers):
		status, resp.Code = http.StatusUnprocessableEntity, "no_active_sellers"
	case errors.Is(err, sellergate.ErrSellersUnavailable):
		status, resp.Code = http.StatusServiceUnavailable, "sellers_unavailable"
	case checkout.IsRetryable(err):
		status, resp.Code = http.StatusServiceUnavailable, "persistence_failed"
	case errors.Is(err, service.ErrProductNotFound):
		status, resp.Code = http.StatusNotFound, "product_not_found"
	case errors.Is(err, orders.ErrOrderNotFound):
		status, resp.Code = http.StatusNotFound, "order_not_found"
	case errors.Is(err, cart.ErrInvalidQuantity):
		status, resp.Code = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, cart.ErrCartBusy):
		status, resp.Code = http.StatusConflict, "cart_busy"
		resp.Retryable = true
	default:
		log.Printf("internal error: %v", err)
		resp.Code = "internal_error"
		resp.Error = "internal server error"
	}
	respondJSON(w, status, resp)
}
