package catalog

import (
	"fmt"
	"strings"

	"github.com/sajibhasan/gymkart/internal/domain/cart"
)

// AvailabilityError carries every availability problem found in a cart.
// The whole order is rejected with a single combined message: no partial
// orders are created when only some items are in stock.
type AvailabilityError struct {
	Problems []string
}

func (e *AvailabilityError) Error() string {
	return strings.Join(e.Problems, ". ")
}

// CurrentStock returns the authoritative stock figure for a resolved item:
// the variant's own stock when it tracks one, else the product's base
// stock, else zero (a record with no stock field fails closed).
func CurrentStock(p Product, v *Variant) int {
	if v != nil && v.Stock != nil {
		return *v.Stock
	}
	if p.BaseStock != nil {
		return *p.BaseStock
	}
	return 0
}

// CheckAvailability validates one line item against its catalog record and
// returns a problem message, or "" when the item can be fulfilled.
//
// products maps product id to record; a missing entry means the product was
// removed from the catalog since it was added to the cart.
func CheckAvailability(products map[string]Product, item cart.LineItem, v *Variant) string {
	p, ok := products[item.ProductID]
	if !ok {
		return fmt.Sprintf("%s is no longer available", item.Name)
	}

	stock := CurrentStock(p, v)
	name := DisplayName(p, v)

	if stock == 0 {
		return fmt.Sprintf("%s is out of stock", name)
	}
	if item.Quantity > stock {
		return fmt.Sprintf("Only %d of %s available", stock, name)
	}
	return ""
}
