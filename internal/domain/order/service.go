package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/buyer"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/cart"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/shipping"
)

// ErrEmptyCart is returned when a commit is attempted for an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// maxCodeAttempts bounds order-code regeneration on collision before the
// commit is abandoned.
const maxCodeAttempts = 5

// CheckoutParams carries the submitted profile, address, and shipping choice
// for one checkout attempt. Monetary values are deliberately absent: weight,
// subtotal, and shipping cost are always re-derived server-side.
type CheckoutParams struct {
	Username   string
	FirstName  string
	LastName   string
	Address1   string
	Address2   string
	ProvinceID string
	CityID     string
	Postcode   string
	Phone      string
	Email      string
	Note       string

	// ShipTo selects the alternate delivery address block below instead of
	// the buyer's own address.
	ShipTo   bool
	Shipping AddressSnapshot
}

// Destination returns the city the order ships to.
func (p CheckoutParams) Destination() string {
	if p.ShipTo {
		return p.Shipping.CityID
	}
	return p.CityID
}

// Service owns the atomic order commit: it derives authoritative totals from
// the cart snapshot and hands the assembled aggregate to the repository for
// single-transaction persistence.
type Service struct {
	orders  Repository
	dueDays int
	now     func() time.Time
}

// NewService creates a Service. paymentDueDays is the grace window added to
// the order date before payment is considered overdue.
func NewService(orders Repository, paymentDueDays int) *Service {
	return &Service{
		orders:  orders,
		dueDays: paymentDueDays,
		now:     time.Now,
	}
}

// Commit builds and atomically persists the order, its items, the stock
// decrements, the shipment, and the buyer profile refresh. The selected quote
// must come from a server-side aggregation of the same cart; Commit trusts
// its cost but nothing submitted by the client.
func (s *Service) Commit(ctx context.Context, b buyer.Context, snapshot *cart.Cart, selected shipping.Quote, p CheckoutParams) (*Order, error) {
	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	orderDate := s.now()
	baseTotal := snapshot.Subtotal()
	grandTotal := baseTotal.Add(selected.Cost)

	customer := AddressSnapshot{
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Address1:   p.Address1,
		Address2:   p.Address2,
		Phone:      p.Phone,
		Email:      p.Email,
		ProvinceID: p.ProvinceID,
		CityID:     p.CityID,
		Postcode:   p.Postcode,
	}

	o := &Order{
		ID:              uuid.New().String(),
		BuyerID:         b.ID,
		Status:          StatusCreated,
		PaymentStatus:   PaymentUnpaid,
		OrderDate:       orderDate,
		PaymentDue:      orderDate.AddDate(0, 0, s.dueDays),
		BaseTotalPrice:  baseTotal,
		ShippingCost:    selected.Cost,
		DiscountAmount:  decimal.Zero,
		DiscountPercent: decimal.Zero,
		GrandTotal:      grandTotal,
		Customer:        customer,
		Note:            p.Note,
		ShippingCourier: selected.Courier,
		ShippingService: selected.Service,
		Items:           buildItems(snapshot),
	}

	shipTo := customer
	if p.ShipTo {
		shipTo = p.Shipping
	}
	shipment := &Shipment{
		OrderID:       o.ID,
		Status:        ShipmentPending,
		TotalQuantity: snapshot.TotalQuantity(),
		TotalWeight:   snapshot.TotalWeight(),
		Address:       shipTo,
	}

	profile := buyer.Profile{
		ID:         b.ID,
		Username:   p.Username,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Address1:   p.Address1,
		Address2:   p.Address2,
		ProvinceID: p.ProvinceID,
		CityID:     p.CityID,
		Postcode:   p.Postcode,
		Phone:      p.Phone,
		Email:      p.Email,
	}

	chk := &Checkout{Buyer: profile, Order: o, Shipment: shipment}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		o.Code = GenerateCode(orderDate)
		err := s.orders.CreateCheckout(ctx, chk)
		if err == nil {
			return o, nil
		}
		if errors.Is(err, ErrDuplicateCode) {
			continue
		}
		return nil, err
	}
	return nil, errors.Errorf("order code generation exhausted after %d attempts", maxCodeAttempts)
}

// AttachPaymentSession stores the payment token and redirect URL on an
// already committed order.
func (s *Service) AttachPaymentSession(ctx context.Context, o *Order, token, redirectURL string) error {
	if err := s.orders.SetPaymentSession(ctx, o.ID, token, redirectURL); err != nil {
		return errors.Wrap(err, "set payment session")
	}
	o.PaymentToken = token
	o.PaymentURL = redirectURL
	return nil
}

func buildItems(snapshot *cart.Cart) []Item {
	items := make([]Item, len(snapshot.Lines))
	for i, l := range snapshot.Lines {
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		items[i] = Item{
			ProductID:       l.ProductID,
			Name:            l.Name,
			Quantity:        l.Quantity,
			BasePrice:       l.UnitPrice,
			BaseTotal:       lineTotal,
			DiscountAmount:  decimal.Zero,
			DiscountPercent: decimal.Zero,
			SubTotal:        lineTotal,
			WeightGrams:     l.WeightGrams,
		}
	}
	return items
}
