package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openmart/martcart/internal/domain"
	"github.com/openmart/martcart/internal/status"
)

// OrderReader is the read side of the orders store.
type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	repo    OrderReader
	timeout time.Duration
}

func NewOrdersHandler(repo OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		repo:    repo,
		timeout: timeout,
	}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	list, err := h.repo.ListOrdersByUserID(ctx, userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, ok := h.loadOwnOrder(ctx, w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// ProgressResponse is the display-ready progress state for one order.
// Suppressed is set for cancelled orders: clients hide the bar instead
// of rendering a misleading half-filled lifecycle.
type ProgressResponse struct {
	Status     status.Entry    `json:"status"`
	Segments   status.Segments `json:"segments"`
	Suppressed bool            `json:"suppressed"`
}

const progressSegmentCount = 4

func (h *OrdersHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, ok := h.loadOwnOrder(ctx, w, r)
	if !ok {
		return
	}

	raw := order.Status.String()
	respondJSON(w, http.StatusOK, ProgressResponse{
		Status:     status.Resolve(raw),
		Segments:   status.ProgressSegments(raw, progressSegmentCount),
		Suppressed: status.IsCancelledOrMissing(raw),
	})
}

func (h *OrdersHandler) loadOwnOrder(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil, false
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return nil, false
	}

	order, err := h.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		handleDomainError(w, r, err)
		return nil, false
	}

	if order.UserID != userID {
		// do not reveal that the order exists
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return nil, false
	}

	return order, true
}
