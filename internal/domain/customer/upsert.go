package customer

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/sajibhasan/gymkart/internal/identity"
)

// SaveAddressInput carries the submitted shipping address and the shopper's
// address-book preferences for one checkout.
type SaveAddressInput struct {
	Address     Address
	AddressKey  string
	MakeDefault bool
	Email       string
}

// Upserter merges a submitted shipping address into the shopper's saved
// address book, creating the customer record on first contact.
type Upserter struct {
	customers Repository
	identity  identity.Provider
	newKey    func() string
}

// NewUpserter creates an Upserter with the given dependencies.
func NewUpserter(customers Repository, provider identity.Provider) *Upserter {
	return &Upserter{
		customers: customers,
		identity:  provider,
		newKey:    uuid.NewString,
	}
}

// SaveAddress upserts the address into the customer's address book and
// returns the customer's internal id. The merge enforces the single-default
// invariant: forcing the entry default clears every other default in the
// same write. A brand-new address also becomes default automatically when
// the customer has no default yet.
//
// The read-merge-write here has no concurrency guard; concurrent checkouts
// by the same shopper can lose an address edit, never produce two defaults.
func (u *Upserter) SaveAddress(ctx context.Context, userID string, in SaveAddressInput) (string, error) {
	c, err := u.customers.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", errors.Wrap(err, "find customer")
	}

	var saved []Address
	if c != nil {
		saved = c.Addresses
	}
	existing := FindByKey(saved, in.AddressKey)

	entry := in.Address
	switch {
	case in.AddressKey != "":
		entry.Key = in.AddressKey
	case existing != nil:
		entry.Key = existing.Key
	default:
		entry.Key = u.newKey()
	}
	if existing != nil && existing.Label != "" {
		entry.Label = existing.Label
	}
	entry.IsDefault = in.MakeDefault || (!HasDefault(saved) && existing == nil)

	merged := MergeAddress(saved, entry)

	if c == nil {
		created := &Customer{
			ID:        u.newKey(),
			UserID:    userID,
			Name:      in.Address.Name,
			Email:     in.Email,
			Addresses: merged,
		}
		// Seed name/email from the identity provider's profile when the
		// checkout did not supply them. Best effort: a profile lookup
		// failure never blocks the checkout.
		if profile, perr := u.identity.Profile(ctx, userID); perr == nil {
			if created.Name == "" {
				created.Name = profile.Name
			}
			if created.Email == "" {
				created.Email = profile.Email
			}
		}
		if err := u.customers.Create(ctx, created); err != nil {
			return "", errors.Wrap(err, "create customer")
		}
		return created.ID, nil
	}

	if err := u.customers.UpdateAddresses(ctx, c.ID, merged); err != nil {
		return "", errors.Wrap(err, "update addresses")
	}
	return c.ID, nil
}
