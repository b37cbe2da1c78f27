package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/sajibhasan/gymkart/internal/domain/catalog"
	"github.com/sajibhasan/gymkart/internal/domain/customer"
	"github.com/sajibhasan/gymkart/internal/domain/discount"
	"github.com/sajibhasan/gymkart/internal/domain/order"
	"github.com/sajibhasan/gymkart/internal/domain/shipping"
)

// --- Mock implementations ---

type mockCatalog struct {
	products []catalog.Product
	listErr  error
	getErr   error
}

func (m *mockCatalog) List(_ context.Context) ([]catalog.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.products, nil
}

func (m *mockCatalog) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []catalog.Product
	for _, p := range m.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *mockCatalog) DecrementStock(_ context.Context, _ []catalog.StockDecrement) error {
	return nil
}

type mockValidator struct {
	resolution *discount.Resolution
	err        error
}

func (m *mockValidator) Validate(_ context.Context, _ string, _ decimal.Decimal) (*discount.Resolution, error) {
	return m.resolution, m.err
}

type mockUsage struct{}

func (mockUsage) IncrementUses(_ context.Context, _ string) error { return nil }

type mockAddressSaver struct {
	userIDs []string
}

func (m *mockAddressSaver) SaveAddress(_ context.Context, userID string, _ customer.SaveAddressInput) (string, error) {
	m.userIDs = append(m.userIDs, userID)
	return "cust-1", nil
}

type mockOrderRepo struct {
	lastOrder *order.Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.err != nil {
		return m.err
	}
	m.lastOrder = o
	return nil
}

// --- Helpers ---

func intp(v int) *int { return &v }

type handlerDeps struct {
	catalog   *mockCatalog
	validator *mockValidator
	addresses *mockAddressSaver
	orders    *mockOrderRepo
}

func newTestHandler(t *testing.T, d *handlerDeps) *Handler {
	t.Helper()
	svc := order.NewService(
		d.catalog, d.validator, mockUsage{}, d.addresses, d.orders, shipping.DefaultTable(),
	)
	h, err := NewHandler(Config{ImageBaseURL: "https://cdn.example.com"}, d.catalog, svc, noop.NewMeterProvider())
	require.NoError(t, err)
	return h
}

func defaultDeps() *handlerDeps {
	return &handlerDeps{
		catalog: &mockCatalog{products: []catalog.Product{
			{
				ID:        "creatine",
				Name:      "Creatine Monohydrate",
				BasePrice: decimal.NewFromInt(1800),
				BaseStock: intp(60),
				Category:  "supplements",
				Image:     "/images/creatine.jpg",
			},
		}},
		validator: &mockValidator{},
		addresses: &mockAddressSaver{},
		orders:    &mockOrderRepo{},
	}
}

func validBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{
				"id":        "line-1",
				"productId": "creatine",
				"name":      "Creatine Monohydrate",
				"price":     1800,
				"quantity":  1,
			},
		},
		"address": map[string]any{
			"name":     "Rahim Uddin",
			"line1":    "House 12, Road 5",
			"division": "Dhaka",
			"phone":    "01712345678",
		},
	}
}

func postCheckout(t *testing.T, h *Handler, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(raw))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func decodeCheckout(t *testing.T, w *httptest.ResponseRecorder) checkoutResponse {
	t.Helper()
	var resp checkoutResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// --- Tests ---

func TestCheckout_Success(t *testing.T) {
	d := defaultDeps()
	h := newTestHandler(t, d)

	w := postCheckout(t, h, validBody(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeCheckout(t, w)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID)
	assert.Empty(t, resp.Error)

	// Country defaults when the frontend omits it.
	require.NotNil(t, d.orders.lastOrder)
	assert.Equal(t, "Bangladesh", d.orders.lastOrder.Address.Country)
}

func TestCheckout_MalformedBody(t *testing.T) {
	h := newTestHandler(t, defaultDeps())

	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeCheckout(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid request body", resp.Error)
}

func TestCheckout_InputErrorsReturn400(t *testing.T) {
	h := newTestHandler(t, defaultDeps())

	body := validBody()
	body["items"] = []map[string]any{}

	w := postCheckout(t, h, body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeCheckout(t, w)
	assert.Equal(t, "Your cart is empty", resp.Error)
}

func TestCheckout_AvailabilityReturns422(t *testing.T) {
	d := defaultDeps()
	d.catalog.products[0].BaseStock = intp(0)
	h := newTestHandler(t, d)

	w := postCheckout(t, h, validBody(), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeCheckout(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, `"Creatine Monohydrate" is out of stock`, resp.Error)
}

func TestCheckout_DiscountErrorsReturn422(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "invalid", err: discount.ErrInvalidCode},
		{name: "expired", err: discount.ErrExpired},
		{name: "usage limit", err: discount.ErrUsageLimit},
		{name: "min subtotal", err: discount.ErrMinSubtotalNotMet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := defaultDeps()
			d.validator.err = tt.err
			h := newTestHandler(t, d)

			body := validBody()
			body["discountCode"] = "SOMECODE"

			w := postCheckout(t, h, body, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			resp := decodeCheckout(t, w)
			assert.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}

func TestCheckout_InternalErrorsNeverLeak(t *testing.T) {
	d := defaultDeps()
	d.catalog.getErr = errors.New("pq: relation does not exist")
	h := newTestHandler(t, d)

	w := postCheckout(t, h, validBody(), nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeCheckout(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to place your order. Please try again.", resp.Error)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestCheckout_UserIDHeaderForwarded(t *testing.T) {
	d := defaultDeps()
	h := newTestHandler(t, d)

	body := validBody()
	body["saveAddress"] = true

	w := postCheckout(t, h, body, map[string]string{"X-User-Id": "user_42"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user_42"}, d.addresses.userIDs)
}

func TestListProducts(t *testing.T) {
	h := newTestHandler(t, defaultDeps())

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var products []productResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "creatine", products[0].ID)
	assert.Equal(t, "https://cdn.example.com/images/creatine.jpg", products[0].Image)
}

func TestListProducts_Failure(t *testing.T) {
	d := defaultDeps()
	d.catalog.listErr = errors.New("db down")
	h := newTestHandler(t, d)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
