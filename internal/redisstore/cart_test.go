package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/cart"
)

func newTestStore(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCartStore(rdb, time.Hour), mr
}

func TestGetMissingCartIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	c, err := store.Get(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Shipping)
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := &cart.Cart{
		Lines: []cart.Line{
			{ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10000"), WeightGrams: 200, Quantity: 2},
		},
	}
	c.SetShipping(cart.Adjustment{Service: "JNE - REG", Courier: "jne", Cost: decimal.RequireFromString("9000")})

	require.NoError(t, store.Save(ctx, "b1", c))

	got, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "p1", got.Lines[0].ProductID)
	assert.True(t, decimal.RequireFromString("10000").Equal(got.Lines[0].UnitPrice))
	require.NotNil(t, got.Shipping)
	assert.True(t, decimal.RequireFromString("9000").Equal(got.Shipping.Cost))
	assert.True(t, decimal.RequireFromString("29000").Equal(got.Total()))
}

func TestCartsAreIsolatedPerBuyer(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b1", &cart.Cart{
		Lines: []cart.Line{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)}},
	}))

	other, err := store.Get(ctx, "b2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestClearRemovesCart(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b1", &cart.Cart{
		Lines: []cart.Line{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)}},
	}))
	require.NoError(t, store.Clear(ctx, "b1"))

	assert.False(t, mr.Exists("cart:b1"))
	c, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestSaveRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b1", &cart.Cart{
		Lines: []cart.Line{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)}},
	}))
	assert.Equal(t, time.Hour, mr.TTL("cart:b1"))

	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.Save(ctx, "b1", &cart.Cart{
		Lines: []cart.Line{{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(1000)}},
	}))
	assert.Equal(t, time.Hour, mr.TTL("cart:b1"))
}

func TestAbandonedCartExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b1", &cart.Cart{
		Lines: []cart.Line{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)}},
	}))

	mr.FastForward(2 * time.Hour)

	c, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
