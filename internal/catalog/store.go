package catalog

import (
	"context"
	"errors"

	"github.com/openmart/martcart/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store is the product catalog lookup collaborator. The cart core never
// fetches product data itself; it is handed products resolved here.
type Store interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// Deduct permanently removes stock for the given line items, all or
	// nothing. Called once an order is placed.
	Deduct(ctx context.Context, items []domain.LineItem) error

	// Restore adds previously deducted stock back. Compensation step for
	// a checkout that failed after its deduction.
	Restore(ctx context.Context, items []domain.LineItem) error
}
