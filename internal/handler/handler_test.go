package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/cart"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/checkout"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/payment"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/product"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/region"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/shipping"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID map[string]*product.Product
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, product.ErrNotFound
}

type mockRegionRepo struct {
	provinces []region.Province
	cities    map[string][]region.City
}

func (m *mockRegionRepo) ListProvinces(_ context.Context) ([]region.Province, error) {
	return m.provinces, nil
}

func (m *mockRegionRepo) ListCities(_ context.Context, provinceID string) ([]region.City, error) {
	return m.cities[provinceID], nil
}

type memCartStore struct {
	carts map[string]*cart.Cart
}

func (s *memCartStore) Get(_ context.Context, buyerID string) (*cart.Cart, error) {
	if c, ok := s.carts[buyerID]; ok {
		return c, nil
	}
	return &cart.Cart{}, nil
}

func (s *memCartStore) Save(_ context.Context, buyerID string, c *cart.Cart) error {
	s.carts[buyerID] = c
	return nil
}

func (s *memCartStore) Clear(_ context.Context, buyerID string) error {
	delete(s.carts, buyerID)
	return nil
}

type stubRateClient struct {
	quotes []shipping.Quote
}

func (s *stubRateClient) Quote(_ context.Context, _, _ string, _ int, _ string) ([]shipping.Quote, error) {
	return s.quotes, nil
}

type mockOrderRepo struct {
	createErr error
	byCode    map[string]*order.Order
	listed    []order.Order
	lastLimit int
	lastOff   int
}

func (m *mockOrderRepo) CreateCheckout(_ context.Context, _ *order.Checkout) error {
	return m.createErr
}

func (m *mockOrderRepo) SetPaymentSession(_ context.Context, _, _, _ string) error {
	return nil
}

func (m *mockOrderRepo) ListByBuyer(_ context.Context, _ string, limit, offset int) ([]order.Order, error) {
	m.lastLimit, m.lastOff = limit, offset
	return m.listed, nil
}

func (m *mockOrderRepo) GetByCode(_ context.Context, _, code string) (*order.Order, error) {
	if o, ok := m.byCode[code]; ok {
		return o, nil
	}
	return nil, order.ErrNotFound
}

type stubGateway struct {
	err error
}

func (g *stubGateway) Open(_ context.Context, _ *order.Order) (*payment.Session, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Session{Token: "tok", RedirectURL: "https://pay.example/tok"}, nil
}

// --- Fixture ---

type fixture struct {
	carts   *memCartStore
	orders  *mockOrderRepo
	gateway *stubGateway
	srv     http.Handler
}

func newFixture() *fixture {
	products := &mockProductRepo{byID: map[string]*product.Product{
		"p1": {ID: "p1", Name: "Widget", Price: decimal.RequireFromString("10000"), WeightGrams: 200, Quantity: 10},
	}}
	regions := &mockRegionRepo{
		provinces: []region.Province{{ID: "6", Name: "DKI Jakarta"}},
		cities: map[string][]region.City{
			"6": {{ID: "114", ProvinceID: "6", Name: "Jakarta Selatan", Postcode: "12110"}},
		},
	}
	carts := &memCartStore{carts: make(map[string]*cart.Cart)}
	agg := shipping.NewAggregator(&stubRateClient{quotes: []shipping.Quote{
		{Courier: "jne", Service: "JNE - REG", Cost: decimal.RequireFromString("9000"), ETD: "2-3"},
	}}, "501", []string{"jne"}, time.Second)
	orders := &mockOrderRepo{byCode: make(map[string]*order.Order)}
	gateway := &stubGateway{}

	orch := checkout.NewOrchestrator(carts, agg, order.NewService(orders, 3), gateway)
	h := New(products, regions, carts, agg, orch, orders)

	return &fixture{carts: carts, orders: orders, gateway: gateway, srv: h.Routes()}
}

func (f *fixture) seedCart(buyerID string) {
	f.carts.carts[buyerID] = &cart.Cart{
		Lines: []cart.Line{
			{ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10000"), WeightGrams: 200, Quantity: 2},
		},
	}
}

func (f *fixture) do(t *testing.T, method, path, buyerID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if buyerID != "" {
		req.Header.Set("X-Buyer-ID", buyerID)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func checkoutBody() map[string]any {
	return map[string]any{
		"username":         "siti",
		"first_name":       "Siti",
		"address1":         "Jl. Melati 5",
		"province_id":      "6",
		"city_id":          "114",
		"postcode":         "12110",
		"phone":            "08123456789",
		"email":            "siti@example.com",
		"shipping_service": "JNE-REG",
	}
}

// --- Tests ---

func TestMissingBuyerHeader(t *testing.T) {
	f := newFixture()

	for _, path := range []string{"/api/cart", "/api/orders"} {
		rec := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestListProvincesAndCities(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/regions/provinces", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	require.Len(t, body["data"], 1)

	rec = f.do(t, http.MethodGet, "/api/regions/cities?province_id=6", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/regions/cities", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddCartItem(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/cart/items", "b1", map[string]any{
		"product_id": "p1",
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "20000", body["subtotal"])
	assert.InDelta(t, 400, body["total_weight"].(float64), 0.001)
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/cart/items", "b1", map[string]any{
		"product_id": "missing",
		"quantity":   1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCartItemInvalidQuantity(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/cart/items", "b1", map[string]any{
		"product_id": "p1",
		"quantity":   0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveCartItem(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")

	rec := f.do(t, http.MethodDelete, "/api/cart/items/p1", "b1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Empty(t, body["lines"])
}

func TestShippingCost(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")

	rec := f.do(t, http.MethodPost, "/api/shipping/cost", "b1", map[string]any{"city_id": "114"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "114", body["destination"])
	assert.InDelta(t, 400, body["weight"].(float64), 0.001)
	results := body["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "JNE - REG", first["service"])
}

func TestShippingCostEmptyCart(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/shipping/cost", "b1", map[string]any{"city_id": "114"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShippingSelect(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")

	rec := f.do(t, http.MethodPost, "/api/shipping/select", "b1", map[string]any{
		"city_id":          "114",
		"shipping_service": "JNE-REG",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "JNE - REG", data["service"])
	assert.Equal(t, "29000", data["total"])

	require.NotNil(t, f.carts.carts["b1"].Shipping)
}

func TestShippingSelectUnknownService(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")

	rec := f.do(t, http.MethodPost, "/api/shipping/select", "b1", map[string]any{
		"city_id":          "114",
		"shipping_service": "POS-Paketpos",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	assert.InDelta(t, 400, body["status"].(float64), 0.001)
	assert.Equal(t, "shipping service not found", body["message"])
}

func TestCheckoutHappyPath(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")

	rec := f.do(t, http.MethodPost, "/api/checkout", "b1", checkoutBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "https://pay.example/tok", body["redirect_url"])
	assert.Regexp(t, `^INV/\d{8}/[0-9A-F]{8}$`, body["order_code"])
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/checkout", "b1", checkoutBody())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is empty", decodeJSON(t, rec)["message"])
}

func TestCheckoutStaleShippingService(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")

	body := checkoutBody()
	body["shipping_service"] = "POS-Paketpos"

	rec := f.do(t, http.MethodPost, "/api/checkout", "b1", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "shipping service not found", decodeJSON(t, rec)["message"])
}

func TestCheckoutStockConflict(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")
	f.orders.createErr = &order.StockConflictError{ProductID: "p1"}

	rec := f.do(t, http.MethodPost, "/api/checkout", "b1", checkoutBody())
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeJSON(t, rec)["message"], "p1")
}

func TestCheckoutPaymentPending(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")
	f.gateway.err = errors.New("snap unavailable")

	rec := f.do(t, http.MethodPost, "/api/checkout", "b1", checkoutBody())
	require.Equal(t, http.StatusAccepted, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "order saved, payment setup failed", body["message"])
	assert.Regexp(t, `^INV/`, body["order_code"])
}

func TestCheckoutValidation(t *testing.T) {
	f := newFixture()
	f.seedCart("b1")

	body := checkoutBody()
	delete(body, "shipping_service")

	rec := f.do(t, http.MethodPost, "/api/checkout", "b1", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "shipping_service is required", decodeJSON(t, rec)["message"])
}

func TestListOrdersPaging(t *testing.T) {
	f := newFixture()
	f.orders.listed = []order.Order{{Code: "INV/20260829/AAAAAAAA", Status: order.StatusCreated}}

	rec := f.do(t, http.MethodGet, "/api/orders?page=3&per_page=20", "b1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 20, f.orders.lastLimit)
	assert.Equal(t, 40, f.orders.lastOff)
	body := decodeJSON(t, rec)
	require.Len(t, body["data"], 1)
}

func TestGetOrderByCode(t *testing.T) {
	f := newFixture()
	code := "INV/20260829/3F9A1C72"
	f.orders.byCode[code] = &order.Order{
		Code:       code,
		Status:     order.StatusCreated,
		GrandTotal: decimal.RequireFromString("54000"),
	}

	rec := f.do(t, http.MethodGet, "/api/orders/"+code, "b1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, code, body["code"])
	assert.Equal(t, "54000", body["grand_total"])
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/orders/INV/20260829/FFFFFFFF", "b1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
