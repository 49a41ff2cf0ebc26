// Package shipping implements shipping-cost aggregation across carriers and
// selection of a quoted option.
package shipping

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is one priced shipping option from a single carrier. Service is the
// carrier-namespaced label (e.g. "JNE - REG") that uniquely identifies the
// quote within one aggregation run.
type Quote struct {
	Courier string          `json:"courier"`
	Service string          `json:"service"`
	Cost    decimal.Decimal `json:"cost"`
	ETD     string          `json:"etd"`
}

// RateClient fetches quotes from one carrier's rate provider. Implementations
// must not be called with an empty origin/destination or non-positive weight;
// the aggregator enforces those preconditions.
type RateClient interface {
	Quote(ctx context.Context, origin, destination string, weightGrams int, courier string) ([]Quote, error)
}
