package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/openmart/martcart/internal/domain"
	"github.com/openmart/martcart/internal/status"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order already exists for idempotency key")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Repository stores placed orders. Orders are never deleted; after
// creation only the status column changes, and only along the
// lifecycle defined in the status package.
type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to status.Status) error
}
