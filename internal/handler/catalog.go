package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/product"
)

type productView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	WeightGrams int             `json:"weight_grams"`
	Quantity    int             `json:"quantity"`
}

func toProductView(p product.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		WeightGrams: p.WeightGrams,
		Quantity:    p.Quantity,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = toProductView(p)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"data": views})
}

func (h *Handler) listProvinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.regions.ListProvinces(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"data": provinces})
}

func (h *Handler) listCities(w http.ResponseWriter, r *http.Request) {
	provinceID := r.URL.Query().Get("province_id")
	if provinceID == "" {
		writeError(w, r, http.StatusBadRequest, "province_id is required")
		return
	}

	cities, err := h.regions.ListCities(r.Context(), provinceID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"data": cities})
}
