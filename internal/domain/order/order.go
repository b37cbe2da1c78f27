package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajibhasan/gymkart/internal/domain/cart"
	"github.com/sajibhasan/gymkart/internal/domain/customer"
)

// Status is the order's fulfilment/payment state at creation time.
type Status string

const (
	// StatusCOD marks an order payable in cash on delivery.
	StatusCOD Status = "cod"
	// StatusPaid marks an order already settled through online payment.
	StatusPaid Status = "paid"
)

// PaymentMethod is how the shopper chose to pay.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// Item is a single line item snapshot inside an order. PriceAtPurchase is
// the price honored at checkout; it is never re-derived from the catalog.
type Item struct {
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
	VariantKey      string          `json:"variantKey,omitempty"`
	VariantSKU      string          `json:"variantSku,omitempty"`
	VariantTitle    string          `json:"variantTitle,omitempty"`
	VariantOptions  []cart.Option   `json:"variantOptions,omitempty"`
}

// Order is a completed customer order. Address and prices are copied in at
// creation time and never re-derived from customer or product records:
// later edits to the address book or catalog never change history.
type Order struct {
	ID             string
	Number         string
	CustomerID     string
	UserID         string
	Email          string
	Items          []Item
	Subtotal       decimal.Decimal
	ShippingFee    decimal.Decimal
	DiscountCode   string
	DiscountTitle  string
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	Status         Status
	PaymentMethod  PaymentMethod
	Notes          string
	Address        customer.Address
	CreatedAt      time.Time
}

// Repository defines persistence operations for orders. Orders are created
// exactly once per successful checkout and are append-only afterwards.
type Repository interface {
	Create(ctx context.Context, o *Order) error
}
