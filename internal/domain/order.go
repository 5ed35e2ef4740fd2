package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openmart/martcart/internal/status"
)

// PriceSummary is derived from a line-item collection, never stored as
// an independent entity except as a snapshot on a placed order.
//
// Invariants: GrandTotal = Subtotal + Tax + DeliveryCharge + Tip and
// TotalDiscount = TotalOriginal - Subtotal.
type PriceSummary struct {
	TotalItems     int             `json:"total_items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalOriginal  decimal.Decimal `json:"total_original"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
	Tax            decimal.Decimal `json:"tax"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	Tip            decimal.Decimal `json:"tip"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Currency       string          `json:"currency"`
}

// Address is the shipping address snapshot taken at checkout.
type Address struct {
	Label     string `json:"label,omitempty"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Zip       string `json:"zip,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
}

// Payment records the chosen method and its settlement state. The core
// never charges anything; gateways live outside this service.
type Payment struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

// Order is an immutable-once-placed snapshot of a checked-out cart.
// Only its status changes afterwards, and only forward.
type Order struct {
	ID             uuid.UUID     `json:"id"`
	UserID         string        `json:"user_id"`
	IdempotencyKey string        `json:"idempotency_key"`
	Status         status.Status `json:"status"`
	Items          []LineItem    `json:"items"`
	Summary        PriceSummary  `json:"summary"`
	Address        Address       `json:"address"`
	Payment        Payment       `json:"payment"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
