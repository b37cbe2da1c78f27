package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sajibhasan/gymkart/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Items
// and the address snapshot are serialized to JSONB.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order row.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}
	addressJSON, err := json.Marshal(o.Address)
	if err != nil {
		return errors.Wrap(err, "marshal order address")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (
			id, number, customer_id, user_id, email, items,
			subtotal, shipping_fee, discount_code, discount_title, discount_amount,
			total, status, payment_method, notes, address, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.ID, o.Number, o.CustomerID, o.UserID, o.Email, itemsJSON,
		o.Subtotal, o.ShippingFee, o.DiscountCode, o.DiscountTitle, o.DiscountAmount,
		o.Total, string(o.Status), string(o.PaymentMethod), o.Notes, addressJSON, o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}

	return nil
}
