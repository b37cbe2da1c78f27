package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sajibhasan/gymkart/internal/domain/discount"
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode looks up an active discount rule by code, case-insensitively.
// Returns discount.ErrInvalidCode when no matching active rule exists.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Rule, error) {
	var (
		rule  discount.Rule
		dtype string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, title, discount_type, value, min_subtotal, max_discount,
		       valid_from, valid_until, max_uses, uses
		FROM discounts
		WHERE UPPER(code) = UPPER($1) AND active`,
		code,
	).Scan(
		&rule.ID, &rule.Code, &rule.Title, &dtype, &rule.Value,
		&rule.MinSubtotal, &rule.MaxDiscount,
		&rule.ValidFrom, &rule.ValidUntil, &rule.MaxUses, &rule.Uses,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrInvalidCode
		}
		return nil, errors.Wrapf(err, "find discount by code %q", code)
	}

	rule.Type = discount.Type(dtype)
	return &rule, nil
}

// IncrementUses bumps the rule's usage counter by one in a single atomic
// statement. Invoked post-commit by the checkout flow.
func (r *DiscountRepository) IncrementUses(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE discounts SET uses = uses + 1 WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "increment uses for discount %q", id)
	}
	return nil
}
