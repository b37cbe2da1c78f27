package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no customer exists for an identity id.
var ErrNotFound = errors.New("customer not found")

// Address is one saved shipping address in a customer's address book.
// At most one address per customer carries IsDefault.
type Address struct {
	Key       string `json:"key"`
	Label     string `json:"label,omitempty"`
	Name      string `json:"name"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	Division  string `json:"division"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"isDefault"`
}

// Customer is a registered shopper, keyed internally by ID and externally
// by the identity provider's UserID.
type Customer struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Addresses []Address
}

// Repository defines persistence operations for customers. The address
// book is stored as a single document field: UpdateAddresses replaces the
// whole list in one atomic write.
type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	UpdateAddresses(ctx context.Context, id string, addresses []Address) error
}
