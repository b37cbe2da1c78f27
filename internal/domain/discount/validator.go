package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator validates a discount code against an order subtotal and returns
// the computed resolution.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Resolution, error)
}

// RepoValidator implements Validator by looking up rules from a Repository
// and applying them via Apply. It performs no writes: usage accounting
// happens after the order commits, outside validation.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the rule for the given code, checks temporal validity,
// usage limits, and the minimum-subtotal requirement, then computes the
// applied amount.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Resolution, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup discount")
	}

	now := v.now()

	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrExpired
	}

	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrUsageLimit
	}

	if rule.MinSubtotal.IsPositive() && subtotal.LessThan(rule.MinSubtotal) {
		return nil, ErrMinSubtotalNotMet
	}

	return &Resolution{
		ID:            rule.ID,
		Code:          rule.Code,
		Title:         rule.Title,
		Type:          rule.Type,
		Value:         rule.Value,
		AppliedAmount: Apply(rule, subtotal),
	}, nil
}
