package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type orderItemView struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	BasePrice   decimal.Decimal `json:"base_price"`
	SubTotal    decimal.Decimal `json:"sub_total"`
	WeightGrams int             `json:"weight_grams"`
}

type orderView struct {
	Code            string          `json:"code"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	OrderDate       time.Time       `json:"order_date"`
	PaymentDue      time.Time       `json:"payment_due"`
	BaseTotalPrice  decimal.Decimal `json:"base_total_price"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	ShippingCourier string          `json:"shipping_courier"`
	ShippingService string          `json:"shipping_service"`
	Note            string          `json:"note,omitempty"`
	PaymentURL      string          `json:"payment_url,omitempty"`
	Items           []orderItemView `json:"items,omitempty"`
}

func toOrderView(o *order.Order) orderView {
	v := orderView{
		Code:            o.Code,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		OrderDate:       o.OrderDate,
		PaymentDue:      o.PaymentDue,
		BaseTotalPrice:  o.BaseTotalPrice,
		ShippingCost:    o.ShippingCost,
		GrandTotal:      o.GrandTotal,
		ShippingCourier: o.ShippingCourier,
		ShippingService: o.ShippingService,
		Note:            o.Note,
		PaymentURL:      o.PaymentURL,
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, orderItemView{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			BasePrice:   it.BasePrice,
			SubTotal:    it.SubTotal,
			WeightGrams: it.WeightGrams,
		})
	}
	return v
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	b, ok := requireBuyer(w, r)
	if !ok {
		return
	}

	page := parsePositive(r.URL.Query().Get("page"), 1)
	perPage := parsePositive(r.URL.Query().Get("per_page"), defaultPageSize)
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	orders, err := h.orders.ListByBuyer(r.Context(), b.ID, perPage, (page-1)*perPage)
	if err != nil {
		internalError(w, r, err)
		return
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = toOrderView(&orders[i])
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"data":     views,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	b, ok := requireBuyer(w, r)
	if !ok {
		return
	}
	// Order codes contain slashes (INV/20060102/XXXXXXXX), so the route is a
	// wildcard rather than a single path segment.
	code := chi.URLParam(r, "*")

	o, err := h.orders.GetByCode(r.Context(), b.ID, code)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderView(o))
}

func parsePositive(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
