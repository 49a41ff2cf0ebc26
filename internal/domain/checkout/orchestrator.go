// Package checkout sequences one checkout attempt: aggregate quotes, select
// the submitted option, commit the order, open a payment session, clear the
// cart.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/buyer"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/cart"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/payment"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/shipping"
)

// State tracks the progress of one checkout attempt. Transitions are strictly
// sequential and non-restartable; a new submission starts a fresh attempt.
type State string

const (
	StateQuoting    State = "QUOTING"
	StateSelecting  State = "SELECTING"
	StateCommitting State = "COMMITTING"
	StatePaying     State = "PAYING"
	StateDone       State = "DONE"

	// StateRejected is the absorbing exit taken before any persistence when
	// the submitted shipping option does not match a current quote.
	StateRejected State = "REJECTED"

	// StatePaymentPending is the absorbing exit where the order committed but
	// the payment session could not be opened. The order stays UNPAID without
	// token/URL; a payment retry path picks it up later.
	StatePaymentPending State = "COMMITTED_PAYMENT_PENDING"
)

// ErrCartEmpty is returned when checkout is submitted with an empty cart.
var ErrCartEmpty = errors.New("cart is empty")

// SubmitRequest is the buyer's checkout submission: profile/address params
// plus the chosen shipping service identifier. No prices; those are
// re-derived server-side.
type SubmitRequest struct {
	order.CheckoutParams

	// ShippingService is the whitespace-free quote label, e.g. "JNE-REG".
	ShippingService string
}

// Result is the outcome of one attempt.
type Result struct {
	State       State
	Order       *order.Order
	RedirectURL string
	Message     string
}

// Orchestrator wires the checkout pipeline components together.
type Orchestrator struct {
	carts    cart.Store
	quotes   *shipping.Aggregator
	orders   *order.Service
	payments payment.Gateway
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(carts cart.Store, quotes *shipping.Aggregator, orders *order.Service, payments payment.Gateway) *Orchestrator {
	return &Orchestrator{
		carts:    carts,
		quotes:   quotes,
		orders:   orders,
		payments: payments,
	}
}

// Submit runs one checkout attempt for the buyer. The cart is cleared only
// after the commit succeeds, so every failure before that leaves it intact
// for retry. A payment-session failure never rolls back the committed order;
// it surfaces as StatePaymentPending with the saved order attached.
func (oc *Orchestrator) Submit(ctx context.Context, b buyer.Context, req SubmitRequest) (*Result, error) {
	lg := zctx.From(ctx)

	snapshot, err := oc.carts.Get(ctx, b.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if snapshot.IsEmpty() {
		return nil, ErrCartEmpty
	}

	// QUOTING: re-derive the authoritative quote set. Client-side prices are
	// never trusted.
	agg := oc.quotes.Aggregate(ctx, req.Destination(), snapshot.TotalWeight())

	// SELECTING.
	selected, ok := shipping.Select(agg.Quotes, req.ShippingService)
	if !ok {
		lg.Info("Checkout rejected: shipping service not found",
			zap.String("submitted", req.ShippingService),
			zap.Int("available", len(agg.Quotes)),
		)
		return &Result{State: StateRejected, Message: "shipping service not found"}, nil
	}

	// COMMITTING.
	o, err := oc.orders.Commit(ctx, b, snapshot, selected, req.CheckoutParams)
	if err != nil {
		return nil, err
	}

	// The order is durable; the cart's job is done. A clear failure is logged
	// and ignored, it must not fail the checkout.
	if err := oc.carts.Clear(ctx, b.ID); err != nil {
		lg.Warn("Cart clear failed after commit",
			zap.String("order_code", o.Code),
			zap.Error(err),
		)
	}

	// PAYING: strictly after the commit transaction closes, so a slow
	// provider never holds database resources.
	sess, err := oc.payments.Open(ctx, o)
	if err != nil {
		lg.Error("Payment session failed, order saved",
			zap.String("order_code", o.Code),
			zap.Error(err),
		)
		return &Result{
			State:   StatePaymentPending,
			Order:   o,
			Message: "order saved, payment setup failed",
		}, nil
	}

	if err := oc.orders.AttachPaymentSession(ctx, o, sess.Token, sess.RedirectURL); err != nil {
		lg.Error("Storing payment session failed, order saved",
			zap.String("order_code", o.Code),
			zap.Error(err),
		)
		return &Result{
			State:   StatePaymentPending,
			Order:   o,
			Message: "order saved, payment setup failed",
		}, nil
	}

	return &Result{
		State:       StateDone,
		Order:       o,
		RedirectURL: sess.RedirectURL,
	}, nil
}
