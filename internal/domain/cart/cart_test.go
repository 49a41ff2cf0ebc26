package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart() *Cart {
	return &Cart{
		Lines: []Line{
			{ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10000"), WeightGrams: 200, Quantity: 2},
			{ProductID: "p2", Name: "Gadget", UnitPrice: decimal.RequireFromString("25000"), WeightGrams: 500, Quantity: 1},
		},
	}
}

func TestCartTotals(t *testing.T) {
	c := newTestCart()

	assert.False(t, c.IsEmpty())
	assert.True(t, decimal.RequireFromString("45000").Equal(c.Subtotal()))
	assert.Equal(t, 3, c.TotalQuantity())
	assert.Equal(t, 900, c.TotalWeight())
	assert.True(t, c.Subtotal().Equal(c.Total()))
}

func TestCartShippingAdjustment(t *testing.T) {
	c := newTestCart()

	c.SetShipping(Adjustment{Service: "JNE - REG", Courier: "jne", Cost: decimal.RequireFromString("9000")})
	assert.True(t, decimal.RequireFromString("54000").Equal(c.Total()))

	// Re-applying replaces, never stacks.
	c.SetShipping(Adjustment{Service: "TIKI - ECO", Courier: "tiki", Cost: decimal.RequireFromString("7000")})
	assert.True(t, decimal.RequireFromString("52000").Equal(c.Total()))

	c.RemoveShipping()
	assert.Nil(t, c.Shipping)
	assert.True(t, c.Subtotal().Equal(c.Total()))
}

func TestAddLineMergesQuantity(t *testing.T) {
	c := newTestCart()

	c.AddLine(Line{ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("12000"), WeightGrams: 250, Quantity: 3})

	require.Len(t, c.Lines, 2)
	assert.Equal(t, 5, c.Lines[0].Quantity)
	// First-added price and weight snapshots stick.
	assert.True(t, decimal.RequireFromString("10000").Equal(c.Lines[0].UnitPrice))
	assert.Equal(t, 200, c.Lines[0].WeightGrams)
}

func TestRemoveLineDropsShippingAdjustment(t *testing.T) {
	c := newTestCart()
	c.SetShipping(Adjustment{Service: "JNE - REG", Courier: "jne", Cost: decimal.RequireFromString("9000")})

	c.RemoveLine("p2")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p1", c.Lines[0].ProductID)
	assert.Nil(t, c.Shipping)
}

func TestRemoveLineUnknownProductKeepsCart(t *testing.T) {
	c := newTestCart()
	c.SetShipping(Adjustment{Service: "JNE - REG", Courier: "jne", Cost: decimal.RequireFromString("9000")})

	c.RemoveLine("missing")

	assert.Len(t, c.Lines, 2)
	assert.NotNil(t, c.Shipping)
}

func TestEmptyCart(t *testing.T) {
	c := &Cart{}

	assert.True(t, c.IsEmpty())
	assert.True(t, decimal.Zero.Equal(c.Subtotal()))
	assert.Equal(t, 0, c.TotalWeight())
}
