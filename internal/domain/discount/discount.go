package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage applies a percentage-based discount to the subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed applies a fixed monetary discount capped at the subtotal.
	TypeFixed Type = "fixed"
)

// Validation errors. Messages are user-facing: they are returned verbatim
// to the shopper when a code is rejected at checkout.
var (
	ErrInvalidCode       = errors.New("Invalid discount code")
	ErrExpired           = errors.New("This discount code has expired")
	ErrUsageLimit        = errors.New("This discount code has reached its usage limit")
	ErrMinSubtotalNotMet = errors.New("Order subtotal is below the minimum for this discount code")
)

// Rule defines a discount code's behaviour and eligibility constraints.
type Rule struct {
	ID          string
	Code        string
	Title       string
	Type        Type
	Value       decimal.Decimal
	MinSubtotal decimal.Decimal
	MaxDiscount decimal.Decimal
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	MaxUses     int
	Uses        int
}

// Resolution is the validated, computed effect of a discount code: its rule
// identity plus the amount actually applied given the subtotal.
type Resolution struct {
	ID            string
	Code          string
	Title         string
	Type          Type
	Value         decimal.Decimal
	AppliedAmount decimal.Decimal
}

// Repository provides lookup and usage accounting for discount rules.
// IncrementUses is invoked by the checkout flow as a best-effort follow-up
// after the order is committed, never as part of validation.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, id string) error
}

// Apply computes the amount a rule deducts from the given subtotal.
// Percentage discounts are optionally capped at MaxDiscount; fixed
// discounts never exceed the subtotal itself.
func Apply(rule *Rule, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch rule.Type {
	case TypePercentage:
		amount = subtotal.Mul(rule.Value).Div(decimal.NewFromInt(100))
		if rule.MaxDiscount.IsPositive() {
			amount = decimal.Min(amount, rule.MaxDiscount)
		}
	case TypeFixed:
		amount = decimal.Min(rule.Value, subtotal)
	default:
		amount = decimal.Zero
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2)
}
