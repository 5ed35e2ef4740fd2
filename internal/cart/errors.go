package cart

import "errors"

var (
	// ErrOutOfStock is returned when an add or quantity change would
	// exceed the product's available stock.
	ErrOutOfStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for quantities below 1. Driving a
	// line to zero requires an explicit remove, never an update.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrItemNotFound is returned when no line item matches the given ID.
	ErrItemNotFound = errors.New("item not found in cart")
)
