package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joaocamilod/catalogo-online/internal/checkout"
	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/joaocamilod/catalogo-online/internal/sellergate"
	"github.com/joaocamilod/catalogo-online/internal/service"
)

type CheckoutAPI interface {
	Quote(ctx context.Context, userID string, m d.PaymentMethod) (*service.Quote, error)
	Sellers(ctx context.Context) sellergate.View
	Submit(ctx context.Context, req service.SubmitRequest) (*checkout.Attempt, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*d.Order, error)
}

type CheckoutHandler struct {
	api     CheckoutAPI
	timeout time.Duration
}

func NewCheckoutHandler(api CheckoutAPI, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		api:     api,
		timeout: timeout,
	}
}

type SellerDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type SellersResponseDTO struct {
	Mode     sellergate.Mode `json:"mode"`
	Sellers  []SellerDTO     `json:"sellers"`
	Error    string          `json:"error,omitempty"`
	CanRetry bool            `json:"can_retry"`
}

type QuoteLineDTO struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type InstallmentsDTO struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type TotalsDTO struct {
	Subtotal     float64          `json:"subtotal"`
	Total        float64          `json:"total"`
	Discount     float64          `json:"discount"`
	Surcharge    float64          `json:"surcharge"`
	Installments *InstallmentsDTO `json:"installments,omitempty"`
}

type QuoteResponseDTO struct {
	PaymentMethod   d.PaymentMethod `json:"payment_method"`
	Lines           []QuoteLineDTO  `json:"lines"`
	Totals          TotalsDTO       `json:"totals"`
	StockViolations []int64         `json:"stock_violations"`
	CanSubmit       bool            `json:"can_submit"`
}

type SubmitRequestDTO struct {
	SellerID      string `json:"seller_id"`
	ManualName    string `json:"manual_name"`
	PaymentMethod string `json:"payment_method"`
	BuyerName     string `json:"buyer_name"`
	BuyerPhone    string `json:"buyer_phone"`
	BuyerEmail    string `json:"buyer_email"`
}

type SubmitResponseDTO struct {
	OrderID     string         `json:"order_id"`
	State       checkout.State `json:"state"`
	Summary     string         `json:"summary"`
	Destination string         `json:"destination,omitempty"`
	WhatsAppURL string         `json:"whatsapp_url,omitempty"`
}

type OrderResponseDTO struct {
	ID            string          `json:"id"`
	SellerID      string          `json:"seller_id,omitempty"`
	SellerName    string          `json:"seller_name"`
	Lines         []d.OrderLine   `json:"lines"`
	Total         float64         `json:"total"`
	PaymentMethod d.PaymentMethod `json:"payment_method"`
	Status        d.OrderStatus   `json:"status"`
	Notified      bool            `json:"notified"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (h *CheckoutHandler) Sellers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view := h.api.Sellers(ctx)
	resp := SellersResponseDTO{
		Mode:     view.Mode,
		Sellers:  make([]SellerDTO, 0, len(view.Sellers)),
		CanRetry: view.CanRetry,
	}
	for _, s := range view.Sellers {
		resp.Sellers = append(resp.Sellers, SellerDTO{ID: s.ID, Name: s.Name, Phone: s.Phone, Email: s.Email})
	}
	if view.LoadErr != nil {
		resp.Error = sellersMessage(view.LoadErr)
	}

	respondJSON(w, http.StatusOK, resp)
}

func sellersMessage(err error) string {
	if errors.Is(err, sellergate.ErrNoActiveSellers) {
		return "no active sellers, type the seller name"
	}
	return "seller list unavailable, type the seller name or retry"
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	method, err := d.ParsePaymentMethod(r.URL.Query().Get("payment_method"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
		return
	}

	q, err := h.api.Quote(ctx, userID, method)
	if err != nil {
		handleError(w, err)
		return
	}

	resp := QuoteResponseDTO{
		PaymentMethod:   q.PaymentMethod,
		Lines:           make([]QuoteLineDTO, 0, len(q.Lines)),
		Totals:          toTotalsDTO(q.Totals),
		StockViolations: append([]int64{}, q.StockViolations...),
		CanSubmit:       q.CanSubmit,
	}
	for _, l := range q.Lines {
		resp.Lines = append(resp.Lines, QuoteLineDTO(l))
	}

	respondJSON(w, http.StatusOK, resp)
}

func toTotalsDTO(t d.Totals) TotalsDTO {
	dto := TotalsDTO{
		Subtotal:  t.Subtotal,
		Total:     t.Total,
		Discount:  t.Discount,
		Surcharge: t.Surcharge,
	}
	if t.Installments != nil {
		dto.Installments = &InstallmentsDTO{Count: t.Installments.Count, Value: t.Installments.Value}
	}
	return dto
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method, err := d.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
		return
	}

	attempt, err := h.api.Submit(ctx, service.SubmitRequest{
		UserID:        userID,
		SellerID:      strings.TrimSpace(req.SellerID),
		ManualName:    req.ManualName,
		PaymentMethod: method,
		BuyerName:     strings.TrimSpace(req.BuyerName),
		BuyerPhone:    strings.TrimSpace(req.BuyerPhone),
		BuyerEmail:    strings.TrimSpace(req.BuyerEmail),
	})
	if err != nil {
		handleError(w, err)
		return
	}
	if attempt.Err != nil {
		handleError(w, attempt.Err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{
		OrderID:     attempt.OrderID,
		State:       attempt.State,
		Summary:     attempt.Summary,
		Destination: attempt.Destination,
		WhatsAppURL: attempt.Link,
	})
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.api.GetOrder(ctx, id)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, OrderResponseDTO{
		ID:            order.ID.String(),
		SellerID:      order.SellerID,
		SellerName:    order.SellerName,
		Lines:         order.Lines,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		Notified:      order.Notified,
		CreatedAt:     order.CreatedAt,
	})
}
