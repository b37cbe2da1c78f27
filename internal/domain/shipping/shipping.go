// Package shipping prices delivery by Bangladeshi administrative division.
package shipping

import "github.com/shopspring/decimal"

// Divisions is the fixed set of delivery regions the store ships to.
// Checkout rejects any address whose division is not in this set.
var Divisions = []string{
	"Dhaka",
	"Chattogram",
	"Rajshahi",
	"Khulna",
	"Barishal",
	"Sylhet",
	"Rangpur",
	"Mymensingh",
}

// ValidDivision reports whether the given division is a known delivery region.
func ValidDivision(division string) bool {
	for _, d := range Divisions {
		if d == division {
			return true
		}
	}
	return false
}

// FeeTable maps divisions to flat delivery fees, with an optional
// free-shipping subtotal threshold.
type FeeTable struct {
	// Rates holds per-division fees. Divisions absent from the map are
	// charged DefaultRate.
	Rates map[string]decimal.Decimal
	// DefaultRate applies to any division without an explicit rate.
	DefaultRate decimal.Decimal
	// FreeOver waives the fee entirely when the subtotal reaches this
	// value. Zero disables the waiver.
	FreeOver decimal.Decimal
}

// DefaultTable returns the store's standard rates: 60 inside Dhaka, 120
// everywhere else, free delivery from 10000 up.
func DefaultTable() FeeTable {
	return FeeTable{
		Rates: map[string]decimal.Decimal{
			"Dhaka": decimal.NewFromInt(60),
		},
		DefaultRate: decimal.NewFromInt(120),
		FreeOver:    decimal.NewFromInt(10000),
	}
}

// Fee returns the delivery fee for the given division and order subtotal.
func (t FeeTable) Fee(division string, subtotal decimal.Decimal) decimal.Decimal {
	if t.FreeOver.IsPositive() && subtotal.GreaterThanOrEqual(t.FreeOver) {
		return decimal.Zero
	}
	if rate, ok := t.Rates[division]; ok {
		return rate
	}
	return t.DefaultRate
}
