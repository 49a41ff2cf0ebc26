package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/cart"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/product"
)

type cartView struct {
	Lines         []cart.Line      `json:"lines"`
	Shipping      *cart.Adjustment `json:"shipping,omitempty"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Total         decimal.Decimal  `json:"total"`
	TotalQuantity int              `json:"total_quantity"`
	TotalWeight   int              `json:"total_weight"`
}

func toCartView(c *cart.Cart) cartView {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartView{
		Lines:         lines,
		Shipping:      c.Shipping,
		Subtotal:      c.Subtotal(),
		Total:         c.Total(),
		TotalQuantity: c.TotalQuantity(),
		TotalWeight:   c.TotalWeight(),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	b, ok := requireBuyer(w, r)
	if !ok {
		return
	}

	c, err := h.carts.Get(r.Context(), b.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCartView(c))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	b, ok := requireBuyer(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		writeError(w, r, http.StatusBadRequest, "product_id and a positive quantity are required")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}

	c, err := h.carts.Get(r.Context(), b.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	c.AddLine(cart.Line{
		ProductID:   p.ID,
		Name:        p.Name,
		UnitPrice:   p.Price,
		WeightGrams: p.WeightGrams,
		Quantity:    req.Quantity,
	})
	if err := h.carts.Save(r.Context(), b.ID, c); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCartView(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	b, ok := requireBuyer(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")

	c, err := h.carts.Get(r.Context(), b.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	c.RemoveLine(productID)
	if err := h.carts.Save(r.Context(), b.ID, c); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCartView(c))
}
