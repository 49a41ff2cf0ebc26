// Package product defines the catalog entity the checkout core reads and the
// single field it writes: the stock quantity decremented at commit time.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product lookup matches nothing.
var ErrNotFound = errors.New("product not found")

// Product is a sellable catalog item. WeightGrams feeds carrier rate
// requests; Quantity is the live stock level.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	WeightGrams int
	Quantity    int
}

// Repository provides catalog reads. Stock mutation happens exclusively
// inside the order commit transaction, not through this interface.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
}
