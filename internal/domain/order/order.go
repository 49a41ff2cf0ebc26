// Package order holds the order aggregate and the atomic checkout commit.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/buyer"
)

// Status enumerates the order lifecycle. Only CREATED is produced here;
// later lifecycle transitions belong to fulfilment, which is out of scope.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentStatus enumerates payment states for an order.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentExpired PaymentStatus = "EXPIRED"
	PaymentFailed  PaymentStatus = "FAILED"
)

// ShipmentStatus enumerates shipment states. Checkout only ever creates
// PENDING shipments.
type ShipmentStatus string

const ShipmentPending ShipmentStatus = "PENDING"

// AddressSnapshot is a denormalized name/address block captured at order time
// so later profile edits do not alter historical orders.
type AddressSnapshot struct {
	FirstName  string
	LastName   string
	Address1   string
	Address2   string
	Phone      string
	Email      string
	ProvinceID string
	CityID     string
	Postcode   string
}

// Order is a committed customer order. Monetary fields are fixed at commit
// time and never recomputed from live cart or product state.
type Order struct {
	ID              string
	Code            string
	BuyerID         string
	Status          Status
	PaymentStatus   PaymentStatus
	OrderDate       time.Time
	PaymentDue      time.Time
	BaseTotalPrice  decimal.Decimal
	ShippingCost    decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountPercent decimal.Decimal
	GrandTotal      decimal.Decimal
	Customer        AddressSnapshot
	Note            string
	ShippingCourier string
	ShippingService string
	PaymentToken    string
	PaymentURL      string
	Items           []Item
}

// Item is one order line with price, weight, and name snapshotted from the
// cart at the time of sale.
type Item struct {
	ProductID       string
	Name            string
	Quantity        int
	BasePrice       decimal.Decimal
	BaseTotal       decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountPercent decimal.Decimal
	SubTotal        decimal.Decimal
	WeightGrams     int
}

// Shipment is the 1:1 delivery record created alongside an order. Its address
// may differ from the order's customer snapshot when the buyer ships to an
// alternate address.
type Shipment struct {
	OrderID       string
	Status        ShipmentStatus
	TotalQuantity int
	TotalWeight   int
	Address       AddressSnapshot
}

// Checkout bundles everything the commit transaction persists atomically.
type Checkout struct {
	Buyer    buyer.Profile
	Order    *Order
	Shipment *Shipment
}

// ErrDuplicateCode is returned by Repository.CreateCheckout when the generated
// order code already exists; the caller regenerates and retries.
var ErrDuplicateCode = errors.New("order code already exists")

// StockConflictError indicates a stock decrement would have driven a
// product's quantity negative; the whole transaction was rolled back.
type StockConflictError struct {
	ProductID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// ErrNotFound is returned when an order lookup matches nothing.
var ErrNotFound = errors.New("order not found")

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateCheckout persists the buyer profile refresh, order, items, stock
	// decrements, and shipment in one atomic transaction. On any failure
	// nothing is persisted. Returns *StockConflictError when a decrement
	// would drive stock negative and ErrDuplicateCode on a code collision.
	CreateCheckout(ctx context.Context, chk *Checkout) error

	// SetPaymentSession stores the gateway token and redirect URL on an
	// already committed order. A single field update, not a transaction.
	SetPaymentSession(ctx context.Context, orderID, token, redirectURL string) error

	ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]Order, error)
	GetByCode(ctx context.Context, buyerID, code string) (*Order, error)
}
