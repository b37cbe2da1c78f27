// Package identity looks up shopper profiles at the external identity
// provider. Session verification happens upstream; this service only needs
// profile data to seed newly created customer records.
package identity

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when the provider has no user for the given id.
var ErrNotFound = errors.New("identity profile not found")

// Profile is the subset of an identity-provider user record the checkout
// flow consumes.
type Profile struct {
	ID    string
	Name  string
	Email string
}

// Provider fetches profiles by external user id.
type Provider interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// Disabled is a Provider for deployments without an identity service
// configured. Every lookup misses.
type Disabled struct{}

func (Disabled) Profile(context.Context, string) (*Profile, error) {
	return nil, ErrNotFound
}
