// Package handler exposes the checkout pipeline over HTTP.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/buyer"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/cart"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/checkout"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/product"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/region"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/shipping"
)

// buyerHeader carries the buyer identity injected by the upstream gateway.
// Authentication itself happens before traffic reaches this service.
const buyerHeader = "X-Buyer-ID"

// Handler holds every dependency the HTTP surface needs.
type Handler struct {
	products product.Repository
	regions  region.Repository
	carts    cart.Store
	quotes   *shipping.Aggregator
	checkout *checkout.Orchestrator
	orders   order.Repository
}

// New creates a Handler.
func New(
	products product.Repository,
	regions region.Repository,
	carts cart.Store,
	quotes *shipping.Aggregator,
	co *checkout.Orchestrator,
	orders order.Repository,
) *Handler {
	return &Handler{
		products: products,
		regions:  regions,
		carts:    carts,
		quotes:   quotes,
		checkout: co,
		orders:   orders,
	}
}

// Routes mounts all API routes on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/regions/provinces", h.listProvinces)
		r.Get("/regions/cities", h.listCities)

		r.Get("/cart", h.getCart)
		r.Post("/cart/items", h.addCartItem)
		r.Delete("/cart/items/{productID}", h.removeCartItem)

		r.Post("/shipping/cost", h.shippingCost)
		r.Post("/shipping/select", h.shippingSelect)

		r.Post("/checkout", h.submitCheckout)

		r.Get("/orders", h.listOrders)
		r.Get("/orders/*", h.getOrder)
	})

	return r
}

// buyerFrom extracts the buyer identity header. An empty header means the
// gateway misrouted the request; it is rejected, not defaulted.
func buyerFrom(r *http.Request) (buyer.Context, bool) {
	id := r.Header.Get(buyerHeader)
	return buyer.Context{ID: id}, id != ""
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Warn("Response write failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Status: status, Message: message})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func requireBuyer(w http.ResponseWriter, r *http.Request) (buyer.Context, bool) {
	b, ok := buyerFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing buyer identity")
	}
	return b, ok
}
