// Package handler exposes the HTTP surface of the checkout service:
// catalog listing and order placement, guarded by API-key auth.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/sajibhasan/gymkart/internal/domain/catalog"
	"github.com/sajibhasan/gymkart/internal/domain/order"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the storefront API, delegating business logic to the
// checkout service and catalog repository.
type Handler struct {
	products     catalog.Repository
	checkout     *order.Service
	imageBaseURL string

	ordersPlaced metric.Int64Counter
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(cfg Config, products catalog.Repository, checkout *order.Service, mp metric.MeterProvider) (*Handler, error) {
	meter := mp.Meter("gymkart.handler")
	ordersPlaced, err := meter.Int64Counter("orders_placed",
		metric.WithDescription("Orders successfully placed at checkout"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders_placed counter")
	}

	return &Handler{
		products:     products,
		checkout:     checkout,
		imageBaseURL: cfg.ImageBaseURL,
		ordersPlaced: ordersPlaced,
	}, nil
}

// Routes returns the API router mounted under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/products", h.ListProducts)
	r.Post("/checkout", h.Checkout)
	return r
}

// writeJSON writes status and a JSON body. Encoding errors past the status
// line are unrecoverable and ignored.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
