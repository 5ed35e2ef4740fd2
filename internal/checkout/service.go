package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/openmart/martcart/internal/catalog"
	"github.com/openmart/martcart/internal/domain"
	"github.com/openmart/martcart/internal/orders"
	"github.com/openmart/martcart/internal/pricing"
	"github.com/openmart/martcart/internal/status"
)

var ErrEmptyCart = errors.New("cart is empty")

// CartService is the slice of the cart service checkout needs.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

type Service struct {
	carts     CartService
	orders    orders.Repository
	catalog   catalog.Store
	publisher Publisher
}

func NewService(carts CartService, repo orders.Repository, cat catalog.Store, publisher Publisher) *Service {
	return &Service{
		carts:     carts,
		orders:    repo,
		catalog:   cat,
		publisher: publisher,
	}
}

type PlaceOrderRequest struct {
	UserID         string
	IdempotencyKey string
	Address        domain.Address
	PaymentMethod  string
	Charges        pricing.Charges
	Currency       string
}

// PlaceOrder turns the user's reconciled cart into an immutable order:
// stock is deducted, the price summary is snapshotted, the order is
// stored, an event is published, and the cart is cleared. Repeating a
// request with the same idempotency key returns the already-created
// order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	} else {
		existing, err := s.orders.GetOrderByIdempotencyKey(ctx, key)
		if err == nil {
			log.Printf("duplicate checkout detected for key %s, returning order %s", key, existing.ID)
			return existing, nil
		}
		if !errors.Is(err, orders.ErrOrderNotFound) {
			return nil, fmt.Errorf("check idempotency key: %w", err)
		}
	}

	crt, err := s.carts.GetCart(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(crt.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.catalog.Deduct(ctx, crt.Items); err != nil {
		return nil, fmt.Errorf("deduct stock: %w", err)
	}

	now := time.Now()
	order := &domain.Order{
		ID:             uuid.New(),
		UserID:         req.UserID,
		IdempotencyKey: key,
		Status:         status.Pending,
		Items:          crt.Items,
		Summary:        pricing.Aggregate(crt.Items, req.Charges, req.Currency),
		Address:        req.Address,
		Payment:        domain.Payment{Method: req.PaymentMethod, Status: "PENDING"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		// the order was not stored, so the deduction above must be undone
		s.restoreStock(ctx, crt.Items)
		if errors.Is(err, orders.ErrDuplicateOrder) {
			existing, getErr := s.orders.GetOrderByIdempotencyKey(ctx, key)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		// event delivery is best effort, the order itself is already safe
		log.Printf("failed to publish order created event for %s: %v", order.ID, err)
	}

	if err := s.carts.Clear(ctx, req.UserID); err != nil {
		log.Printf("failed to clear cart for user %s after checkout: %v", req.UserID, err)
	}

	return order, nil
}

func (s *Service) restoreStock(ctx context.Context, items []domain.LineItem) {
	if err := s.catalog.Restore(ctx, items); err != nil {
		log.Printf("failed to restore stock after checkout failure: %v", err)
	}
}

// CancelOrder moves an order to CANCELLED, valid from any non-terminal
// state.
func (s *Service) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.orders.UpdateStatus(ctx, orderID, status.Cancelled)
}
