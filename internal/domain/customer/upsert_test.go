package customer

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajibhasan/gymkart/internal/identity"
)

type mockCustomerRepo struct {
	byUserID map[string]*Customer

	created     *Customer
	updatedID   string
	updatedWith []Address
	createErr   error
	updateErr   error
}

func (m *mockCustomerRepo) FindByUserID(_ context.Context, userID string) (*Customer, error) {
	c, ok := m.byUserID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) Create(_ context.Context, c *Customer) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = c
	return nil
}

func (m *mockCustomerRepo) UpdateAddresses(_ context.Context, id string, addresses []Address) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedID = id
	m.updatedWith = addresses
	return nil
}

type mockProvider struct {
	profile *identity.Profile
	err     error
}

func (m *mockProvider) Profile(_ context.Context, _ string) (*identity.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

func newUpserter(repo *mockCustomerRepo, provider identity.Provider) *Upserter {
	u := NewUpserter(repo, provider)
	n := 0
	u.newKey = func() string {
		n++
		switch n {
		case 1:
			return "key-1"
		default:
			return "key-2"
		}
	}
	return u
}

func shippingAddress() Address {
	return Address{
		Name:     "Rahim Uddin",
		Line1:    "House 12, Road 5",
		Division: "Dhaka",
		Phone:    "01712345678",
	}
}

func TestSaveAddress_FirstContactCreatesCustomer(t *testing.T) {
	repo := &mockCustomerRepo{byUserID: map[string]*Customer{}}
	u := newUpserter(repo, identity.Disabled{})

	id, err := u.SaveAddress(context.Background(), "user_1", SaveAddressInput{
		Address: shippingAddress(),
		Email:   "rahim@example.com",
	})
	require.NoError(t, err)

	c := repo.created
	require.NotNil(t, c)
	assert.Equal(t, c.ID, id)
	assert.Equal(t, "user_1", c.UserID)
	assert.Equal(t, "Rahim Uddin", c.Name)
	assert.Equal(t, "rahim@example.com", c.Email)

	require.Len(t, c.Addresses, 1)
	assert.NotEmpty(t, c.Addresses[0].Key)
	assert.True(t, c.Addresses[0].IsDefault, "first address becomes default automatically")
}

func TestSaveAddress_ProfileSeedsMissingFields(t *testing.T) {
	repo := &mockCustomerRepo{byUserID: map[string]*Customer{}}
	u := newUpserter(repo, &mockProvider{
		profile: &identity.Profile{ID: "user_1", Name: "Rahim Uddin", Email: "rahim@clerk.example"},
	})

	addr := shippingAddress()
	addr.Name = "Rahim Uddin"

	_, err := u.SaveAddress(context.Background(), "user_1", SaveAddressInput{Address: addr})
	require.NoError(t, err)

	// Email was missing from the checkout, seeded from the profile.
	assert.Equal(t, "rahim@clerk.example", repo.created.Email)
}

func TestSaveAddress_ProfileFailureIsBestEffort(t *testing.T) {
	repo := &mockCustomerRepo{byUserID: map[string]*Customer{}}
	u := newUpserter(repo, &mockProvider{err: errors.New("upstream down")})

	_, err := u.SaveAddress(context.Background(), "user_1", SaveAddressInput{Address: shippingAddress()})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Empty(t, repo.created.Email)
}

func TestSaveAddress_AppendsToExistingBook(t *testing.T) {
	repo := &mockCustomerRepo{byUserID: map[string]*Customer{
		"user_1": {
			ID:     "cust-1",
			UserID: "user_1",
			Addresses: []Address{
				{Key: "home", Label: "Home", IsDefault: true},
			},
		},
	}}
	u := newUpserter(repo, identity.Disabled{})

	id, err := u.SaveAddress(context.Background(), "user_1", SaveAddressInput{Address: shippingAddress()})
	require.NoError(t, err)
	assert.Equal(t, "cust-1", id)
	assert.Equal(t, "cust-1", repo.updatedID)

	require.Len(t, repo.updatedWith, 2)
	assert.True(t, repo.updatedWith[0].IsDefault, "existing default kept")
	assert.False(t, repo.updatedWith[1].IsDefault, "new entry not default when one exists")
}

func TestSaveAddress_UpdateExistingEntryKeepsLabel(t *testing.T) {
	repo := &mockCustomerRepo{byUserID: map[string]*Customer{
		"user_1": {
			ID:     "cust-1",
			UserID: "user_1",
			Addresses: []Address{
				{Key: "home", Label: "Home", Line1: "old street", IsDefault: true},
				{Key: "office", Label: "Office"},
			},
		},
	}}
	u := newUpserter(repo, identity.Disabled{})

	addr := shippingAddress()
	addr.Line1 = "new street"

	_, err := u.SaveAddress(context.Background(), "user_1", SaveAddressInput{
		Address:    addr,
		AddressKey: "home",
	})
	require.NoError(t, err)

	require.Len(t, repo.updatedWith, 2)
	assert.Equal(t, "home", repo.updatedWith[0].Key)
	assert.Equal(t, "new street", repo.updatedWith[0].Line1)
	assert.Equal(t, "Home", repo.updatedWith[0].Label, "label survives the update")
}

func TestSaveAddress_MakeDefaultClearsOthers(t *testing.T) {
	repo := &mockCustomerRepo{byUserID: map[string]*Customer{
		"user_1": {
			ID:     "cust-1",
			UserID: "user_1",
			Addresses: []Address{
				{Key: "home", IsDefault: true},
			},
		},
	}}
	u := newUpserter(repo, identity.Disabled{})

	_, err := u.SaveAddress(context.Background(), "user_1", SaveAddressInput{
		Address:     shippingAddress(),
		MakeDefault: true,
	})
	require.NoError(t, err)

	require.Len(t, repo.updatedWith, 2)
	defaults := 0
	for _, a := range repo.updatedWith {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
	assert.False(t, repo.updatedWith[0].IsDefault, "old default cleared")
}

func TestSaveAddress_UpdateFailure(t *testing.T) {
	repo := &mockCustomerRepo{
		byUserID: map[string]*Customer{
			"user_1": {ID: "cust-1", UserID: "user_1"},
		},
		updateErr: errors.New("db down"),
	}
	u := newUpserter(repo, identity.Disabled{})

	_, err := u.SaveAddress(context.Background(), "user_1", SaveAddressInput{Address: shippingAddress()})
	require.Error(t, err)
}
