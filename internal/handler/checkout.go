package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/sajibhasan/gymkart/internal/domain/cart"
	"github.com/sajibhasan/gymkart/internal/domain/catalog"
	"github.com/sajibhasan/gymkart/internal/domain/customer"
	"github.com/sajibhasan/gymkart/internal/domain/discount"
	"github.com/sajibhasan/gymkart/internal/domain/order"
)

// userIDHeader carries the shopper's identity-provider user id. The
// storefront backend verifies the session upstream and forwards the id;
// requests without it are anonymous checkouts.
const userIDHeader = "X-User-Id"

type addressInput struct {
	Label    string `json:"label,omitempty"`
	Name     string `json:"name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Division string `json:"division"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone"`
}

type checkoutRequest struct {
	Items         []cart.LineItem `json:"items"`
	Address       addressInput    `json:"address"`
	Email         string          `json:"email,omitempty"`
	OrderNotes    string          `json:"orderNotes,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	DiscountCode  string          `json:"discountCode,omitempty"`
	SaveAddress   bool            `json:"saveAddress,omitempty"`
	MakeDefault   bool            `json:"makeDefault,omitempty"`
	AddressKey    string          `json:"addressKey,omitempty"`
}

// checkoutResponse is strictly binary: success with an order id, or
// failure with a short display-ready message. No partial-success shape.
type checkoutResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Checkout places a cash-on-delivery or pre-paid order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, checkoutResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	country := req.Address.Country
	if country == "" {
		country = "Bangladesh"
	}

	result, err := h.checkout.Checkout(r.Context(), order.CheckoutInput{
		Items: req.Items,
		Address: customer.Address{
			Label:    req.Address.Label,
			Name:     req.Address.Name,
			Line1:    req.Address.Line1,
			Line2:    req.Address.Line2,
			Division: req.Address.Division,
			Postcode: req.Address.Postcode,
			Country:  country,
			Phone:    req.Address.Phone,
		},
		Email:         req.Email,
		OrderNotes:    req.OrderNotes,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		DiscountCode:  req.DiscountCode,
		SaveAddress:   req.SaveAddress,
		MakeDefault:   req.MakeDefault,
		AddressKey:    req.AddressKey,
		UserID:        r.Header.Get(userIDHeader),
	})
	if err != nil {
		status, msg := mapCheckoutError(err)
		if status == http.StatusInternalServerError {
			zctx.From(r.Context()).Error("checkout failed", zap.Error(err))
		}
		writeJSON(w, status, checkoutResponse{Success: false, Error: msg})
		return
	}

	h.ordersPlaced.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("payment_method", paymentMethodLabel(req.PaymentMethod)),
	))

	writeJSON(w, http.StatusOK, checkoutResponse{
		Success: true,
		OrderID: result.OrderID,
	})
}

// mapCheckoutError converts workflow errors to an HTTP status and a short
// display-ready message. Internals never leak: anything outside the known
// taxonomy collapses to a generic failure.
func mapCheckoutError(err error) (int, string) {
	var inputErr *order.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest, inputErr.Message
	}

	var availErr *catalog.AvailabilityError
	if errors.As(err, &availErr) {
		return http.StatusUnprocessableEntity, availErr.Error()
	}

	for _, known := range []error{
		discount.ErrInvalidCode,
		discount.ErrExpired,
		discount.ErrUsageLimit,
		discount.ErrMinSubtotalNotMet,
	} {
		if errors.Is(err, known) {
			return http.StatusUnprocessableEntity, known.Error()
		}
	}

	return http.StatusInternalServerError, "Failed to place your order. Please try again."
}

func paymentMethodLabel(m string) string {
	if m == string(order.PaymentOnline) {
		return string(order.PaymentOnline)
	}
	return string(order.PaymentCOD)
}
