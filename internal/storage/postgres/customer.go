package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sajibhasan/gymkart/internal/domain/customer"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
// The address book is a single JSONB column: UpdateAddresses replaces the
// whole list in one atomic row update.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// FindByUserID looks up a customer by the identity provider's user id.
// Returns customer.ErrNotFound when no record exists.
func (r *CustomerRepository) FindByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	var (
		c             customer.Customer
		addressesJSON []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, email, addresses FROM customers WHERE user_id = $1`,
		userID,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &addressesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find customer by user id %q", userID)
	}

	if err := json.Unmarshal(addressesJSON, &c.Addresses); err != nil {
		return nil, errors.Wrapf(err, "unmarshal addresses for customer %q", c.ID)
	}
	return &c, nil
}

// Create inserts a new customer record.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	addressesJSON, err := json.Marshal(c.Addresses)
	if err != nil {
		return errors.Wrap(err, "marshal addresses")
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO customers (id, user_id, name, email, addresses) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.UserID, c.Name, c.Email, addressesJSON,
	)
	if err != nil {
		return errors.Wrapf(err, "create customer %q", c.ID)
	}
	return nil
}

// UpdateAddresses replaces the customer's address book in one write.
func (r *CustomerRepository) UpdateAddresses(ctx context.Context, id string, addresses []customer.Address) error {
	addressesJSON, err := json.Marshal(addresses)
	if err != nil {
		return errors.Wrap(err, "marshal addresses")
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET addresses = $2, updated_at = now() WHERE id = $1`,
		id, addressesJSON,
	)
	if err != nil {
		return errors.Wrapf(err, "update addresses for customer %q", id)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}
