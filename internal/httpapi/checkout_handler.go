package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openmart/martcart/internal/checkout"
	"github.com/openmart/martcart/internal/domain"
	"github.com/openmart/martcart/internal/pricing"
)

// CheckoutService places and cancels orders.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, req checkout.PlaceOrderRequest) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) error
}

type CheckoutHandler struct {
	service  CheckoutService
	orders   OrderReader
	timeout  time.Duration
	currency string
}

func NewCheckoutHandler(service CheckoutService, orders OrderReader, timeout time.Duration, currency string) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		orders:   orders,
		timeout:  timeout,
		currency: currency,
	}
}

type PlaceOrderRequestDTO struct {
	Address        domain.Address  `json:"address"`
	PaymentMethod  string          `json:"payment_method"`
	Tax            decimal.Decimal `json:"tax"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	Tip            decimal.Decimal `json:"tip"`
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.PaymentMethod == "" {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment_method is required")
		return
	}

	order, err := h.service.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		UserID:         userID,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Address:        req.Address,
		PaymentMethod:  req.PaymentMethod,
		Charges: pricing.Charges{
			Tax:            req.Tax,
			DeliveryCharge: req.DeliveryCharge,
			Tip:            req.Tip,
		},
		Currency: h.currency,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if order.UserID != userID {
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return
	}

	if err := h.service.CancelOrder(ctx, orderID); err != nil {
		handleDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
