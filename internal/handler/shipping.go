package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/cart"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/shipping"
)

type shippingCostRequest struct {
	CityID string `json:"city_id"`
}

// shippingCost returns the merged quote set for the buyer's current cart
// weight shipped to the given city. Prices are always derived server-side;
// the client never submits a weight.
func (h *Handler) shippingCost(w http.ResponseWriter, r *http.Request) {
	b, ok := requireBuyer(w, r)
	if !ok {
		return
	}

	var req shippingCostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.carts.Get(r.Context(), b.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if c.IsEmpty() {
		writeError(w, r, http.StatusBadRequest, "cart is empty")
		return
	}

	res := h.quotes.Aggregate(r.Context(), req.CityID, c.TotalWeight())
	writeJSON(w, r, http.StatusOK, res)
}

type shippingSelectRequest struct {
	CityID          string `json:"city_id"`
	ShippingService string `json:"shipping_service"`
}

type shippingSelectData struct {
	Service string          `json:"service"`
	Courier string          `json:"courier"`
	Cost    decimal.Decimal `json:"cost"`
	Total   decimal.Decimal `json:"total"`
}

// shippingSelect re-aggregates quotes for the cart and applies the matching
// option as the cart's shipping adjustment. Selecting again replaces the
// previous adjustment, so repeated calls are idempotent.
func (h *Handler) shippingSelect(w http.ResponseWriter, r *http.Request) {
	b, ok := requireBuyer(w, r)
	if !ok {
		return
	}

	var req shippingSelectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.carts.Get(r.Context(), b.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if c.IsEmpty() {
		writeError(w, r, http.StatusBadRequest, "cart is empty")
		return
	}

	agg := h.quotes.Aggregate(r.Context(), req.CityID, c.TotalWeight())
	selected, found := shipping.Select(agg.Quotes, req.ShippingService)
	if !found {
		writeError(w, r, http.StatusBadRequest, "shipping service not found")
		return
	}

	c.SetShipping(cart.Adjustment{
		Service: selected.Service,
		Courier: selected.Courier,
		Cost:    selected.Cost,
	})
	if err := h.carts.Save(r.Context(), b.ID, c); err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"data": shippingSelectData{
			Service: selected.Service,
			Courier: selected.Courier,
			Cost:    selected.Cost,
			Total:   c.Total(),
		},
	})
}
