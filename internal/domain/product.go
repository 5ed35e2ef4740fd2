package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as served by the product lookup collaborator.
// DiscountPrice is the effective unit price; it never exceeds OriginalPrice.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
	Stock         int             `json:"stock"`
	ShopID        string          `json:"shop_id"`
	ShopName      string          `json:"shop_name"`
	Images        []string        `json:"images,omitempty"`
}

// Image returns the primary image reference, or "" when none exists.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
