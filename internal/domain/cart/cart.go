// Package cart defines the session cart consumed by the checkout pipeline.
//
// The checkout core treats a Cart as an immutable snapshot for the duration of
// one attempt: handlers load it from the Store, derive totals from it, and only
// the store-owning endpoints mutate and save it back. The shipping cost is an
// explicit typed adjustment on the cart rather than a named side-effecting
// condition on the total.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Line is a single cart line. Price and weight are snapshotted from the
// product at the time the line was added.
type Line struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	WeightGrams int             `json:"weight_grams"`
	Quantity    int             `json:"quantity"`
}

// Adjustment is the selected shipping option applied to a cart. Re-applying
// replaces the previous adjustment; there is at most one per cart.
type Adjustment struct {
	Service string          `json:"service"`
	Courier string          `json:"courier"`
	Cost    decimal.Decimal `json:"cost"`
}

// Cart holds the buyer's current lines and the optional shipping adjustment.
type Cart struct {
	Lines    []Line      `json:"lines"`
	Shipping *Adjustment `json:"shipping,omitempty"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Subtotal returns the sum of line totals, excluding shipping.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// TotalQuantity returns the sum of line quantities.
func (c *Cart) TotalQuantity() int {
	var qty int
	for _, l := range c.Lines {
		qty += l.Quantity
	}
	return qty
}

// TotalWeight returns the cart weight in grams.
func (c *Cart) TotalWeight() int {
	var weight int
	for _, l := range c.Lines {
		weight += l.Quantity * l.WeightGrams
	}
	return weight
}

// Total returns subtotal plus the shipping adjustment, when one is set.
func (c *Cart) Total() decimal.Decimal {
	total := c.Subtotal()
	if c.Shipping != nil {
		total = total.Add(c.Shipping.Cost)
	}
	return total
}

// SetShipping replaces any existing shipping adjustment with adj.
func (c *Cart) SetShipping(adj Adjustment) {
	c.Shipping = &adj
}

// RemoveShipping drops the shipping adjustment, if any.
func (c *Cart) RemoveShipping() {
	c.Shipping = nil
}

// AddLine merges qty into an existing line for the same product, or appends a
// new line. A new quantity snapshot does not refresh price or weight; lines
// keep the values captured when first added.
func (c *Cart) AddLine(line Line) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// RemoveLine deletes the line for productID. Removing a line invalidates any
// previously selected shipping option, so the adjustment is dropped too.
func (c *Cart) RemoveLine(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.Shipping = nil
			return
		}
	}
}

// Store persists carts per buyer.
type Store interface {
	Get(ctx context.Context, buyerID string) (*Cart, error)
	Save(ctx context.Context, buyerID string, c *Cart) error
	Clear(ctx context.Context, buyerID string) error
}
