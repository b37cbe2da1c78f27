// Package cart holds the client-supplied checkout input types. Line items
// are ephemeral client state: the price is what the shopper saw at
// add-to-cart time and is honored at checkout, while stock and variant
// truth always come from the catalog.
package cart

import "github.com/shopspring/decimal"

// Option is a single variant dimension, e.g. {Name: "Flavor", Value: "Vanilla"}.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VariantSelector identifies which sellable variant a line item refers to.
// Any of the three fields may be set; resolution tries Key, then SKU, then
// the full option set.
type VariantSelector struct {
	Key     string   `json:"key,omitempty"`
	SKU     string   `json:"sku,omitempty"`
	Options []Option `json:"options,omitempty"`
}

// LineItem is one product (+ optional variant) and quantity entry in a
// shopping cart at checkout time. A nil Variant means the product sells at
// its base price and stock.
type LineItem struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  int              `json:"quantity"`
	Variant   *VariantSelector `json:"variant,omitempty"`
}
