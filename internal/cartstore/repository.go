package cartstore

import (
	"context"
	"errors"

	"github.com/openmart/martcart/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository persists the cart between sessions. The reconciliation
// core works on the in-memory collection; this is only its storage
// collaborator.
type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}
