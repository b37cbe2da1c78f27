package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/sajibhasan/gymkart/internal/domain/cart"
	"github.com/sajibhasan/gymkart/internal/domain/catalog"
)

type variantResponse struct {
	Key     string        `json:"key"`
	SKU     string        `json:"sku,omitempty"`
	Price   *float64      `json:"price,omitempty"`
	Stock   *int          `json:"stock,omitempty"`
	Options []cart.Option `json:"options,omitempty"`
}

type productResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	BasePrice float64           `json:"basePrice"`
	BaseStock *int              `json:"baseStock,omitempty"`
	Category  string            `json:"category,omitempty"`
	Image     string            `json:"image,omitempty"`
	Variants  []variantResponse `json:"variants,omitempty"`
}

// ListProducts returns the full catalog for the storefront.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list products failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"code":    500,
			"message": "failed to load products",
		})
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// toProductResponse converts a catalog record into the API shape. Image
// paths are prefixed with the configured imageBaseURL.
func (h *Handler) toProductResponse(p catalog.Product) productResponse {
	resp := productResponse{
		ID:        p.ID,
		Name:      p.Name,
		BasePrice: p.BasePrice.InexactFloat64(),
		BaseStock: p.BaseStock,
		Category:  p.Category,
	}
	if p.Image != "" {
		resp.Image = h.imageBaseURL + p.Image
	}

	for _, v := range p.Variants {
		vr := variantResponse{
			Key:     v.Key,
			SKU:     v.SKU,
			Stock:   v.Stock,
			Options: v.Options,
		}
		if v.Price != nil {
			price := v.Price.InexactFloat64()
			vr.Price = &price
		}
		resp.Variants = append(resp.Variants, vr)
	}
	return resp
}
