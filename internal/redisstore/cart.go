// Package redisstore implements the session cart store on Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/cart"
)

var _ cart.Store = (*CartStore)(nil)

// CartStore keeps one JSON-encoded cart per buyer under cart:<buyer id>,
// refreshed with a TTL on every save so abandoned carts expire on their own.
type CartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCartStore creates a CartStore with the given per-cart TTL.
func NewCartStore(rdb *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{rdb: rdb, ttl: ttl}
}

func cartKey(buyerID string) string {
	return "cart:" + buyerID
}

// Get loads the buyer's cart. A missing key is an empty cart, not an error.
func (s *CartStore) Get(ctx context.Context, buyerID string) (*cart.Cart, error) {
	data, err := s.rdb.Get(ctx, cartKey(buyerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &cart.Cart{}, nil
		}
		return nil, errors.Wrapf(err, "get cart for buyer %s", buyerID)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "decode cart for buyer %s", buyerID)
	}
	return &c, nil
}

// Save stores the cart and resets its TTL.
func (s *CartStore) Save(ctx context.Context, buyerID string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrapf(err, "encode cart for buyer %s", buyerID)
	}
	if err := s.rdb.Set(ctx, cartKey(buyerID), data, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "save cart for buyer %s", buyerID)
	}
	return nil
}

// Clear removes the buyer's cart.
func (s *CartStore) Clear(ctx context.Context, buyerID string) error {
	if err := s.rdb.Del(ctx, cartKey(buyerID)).Err(); err != nil {
		return errors.Wrapf(err, "clear cart for buyer %s", buyerID)
	}
	return nil
}
