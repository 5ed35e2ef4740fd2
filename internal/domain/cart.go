package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product inside a cart or order. Quantity is always
// positive; an item driven to zero is removed, never kept.
type LineItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
	Quantity      int             `json:"quantity"`
	Stock         int             `json:"stock"`
	ShopID        string          `json:"shop_id"`
	ShopName      string          `json:"shop_name"`
	Image         string          `json:"image,omitempty"`
	AddedAt       time.Time       `json:"added_at"`
}

// OriginalLineTotal is the pre-discount total for the line.
func (li LineItem) OriginalLineTotal() decimal.Decimal {
	return li.OriginalPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// DiscountedLineTotal is the effective total for the line.
func (li LineItem) DiscountedLineTotal() decimal.Decimal {
	return li.DiscountPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is the authoritative line-item collection for one user.
type Cart struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"user_id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FindItem returns the index of the line item with the given ID, or -1.
func (c *Cart) FindItem(lineItemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of the line item holding the given
// product from the given shop, or -1. Add merges on this key.
func (c *Cart) FindProduct(productID, shopID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].ShopID == shopID {
			return i
		}
	}
	return -1
}
