package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/sajibhasan/gymkart/internal/domain/cart"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. A product with
// no variants sells at BasePrice/BaseStock.
type Product struct {
	ID        string
	Name      string
	BasePrice decimal.Decimal
	BaseStock *int
	Category  string
	Image     string
	Variants  []Variant
}

// Variant is a specific sellable configuration of a product (size, flavor,
// weight). Price and Stock are optional: a variant without its own price
// sells at the product's base price, and one without its own stock tracks
// the product's base stock.
type Variant struct {
	Key     string           `json:"key"`
	SKU     string           `json:"sku,omitempty"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Stock   *int             `json:"stock,omitempty"`
	Options []cart.Option    `json:"options,omitempty"`
}

// StockDecrement describes one stock mutation to apply after an order is
// committed. An empty VariantKey targets the product's base stock.
type StockDecrement struct {
	ProductID  string
	VariantKey string
	Quantity   int
}

// Repository defines catalog operations. DecrementStock applies all
// decrements in one transaction; each decrement itself touches a single
// product row.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	DecrementStock(ctx context.Context, decs []StockDecrement) error
}
