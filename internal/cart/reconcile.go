package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmart/martcart/internal/domain"
)

// The functions in this file are the reconciliation core: synchronous,
// in-memory, no I/O. Every operation either fully applies or leaves the
// collection untouched.

// Add puts a product into the cart. If the cart already holds the same
// product from the same shop, the quantities are merged instead of
// creating a duplicate line. A quantity below 1 defaults to 1.
func Add(c *domain.Cart, p domain.Product, qty int) (*domain.LineItem, error) {
	if qty < 1 {
		qty = 1
	}
	if p.Stock <= 0 {
		return nil, ErrOutOfStock
	}

	if i := c.FindProduct(p.ID, p.ShopID); i >= 0 {
		merged := c.Items[i].Quantity + qty
		if merged > p.Stock {
			return nil, ErrOutOfStock
		}
		c.Items[i].Quantity = merged
		c.Items[i].Stock = p.Stock
		return &c.Items[i], nil
	}

	if qty > p.Stock {
		return nil, ErrOutOfStock
	}

	c.Items = append(c.Items, domain.LineItem{
		ID:            uuid.NewString(),
		ProductID:     p.ID,
		Name:          p.Name,
		OriginalPrice: p.OriginalPrice,
		DiscountPrice: p.DiscountPrice,
		Quantity:      qty,
		Stock:         p.Stock,
		ShopID:        p.ShopID,
		ShopName:      p.ShopName,
		Image:         p.Image(),
		AddedAt:       time.Now(),
	})
	return &c.Items[len(c.Items)-1], nil
}

// UpdateQuantity sets a line item's quantity. Quantities below 1 are
// rejected; callers remove explicitly instead.
func UpdateQuantity(c *domain.Cart, lineItemID string, qty int) (*domain.LineItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	i := c.FindItem(lineItemID)
	if i < 0 {
		return nil, ErrItemNotFound
	}

	if qty > c.Items[i].Stock {
		return nil, ErrOutOfStock
	}

	c.Items[i].Quantity = qty
	return &c.Items[i], nil
}

// Remove deletes a line item from the cart.
func Remove(c *domain.Cart, lineItemID string) error {
	i := c.FindItem(lineItemID)
	if i < 0 {
		return ErrItemNotFound
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}
