package shipping

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DegradedReason explains why an aggregation produced no quotes without any
// carrier being consulted.
type DegradedReason string

const (
	// ReasonMissingOrigin marks a missing origin configuration.
	ReasonMissingOrigin DegradedReason = "origin not configured"
	// ReasonInvalidRequest marks an empty destination or non-positive weight.
	ReasonInvalidRequest DegradedReason = "invalid destination or weight"
)

// AggregateResult is the merged quote set for one (destination, weight)
// request. A degraded result (empty Quotes with Reason set) is a successful
// response, not an error: the checkout UI stays responsive when shipping
// configuration is incomplete.
type AggregateResult struct {
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	WeightGrams int            `json:"weight"`
	Quotes      []Quote        `json:"results"`
	Reason      DegradedReason `json:"reason,omitempty"`
}

// Aggregator fans out rate requests to every configured courier and merges
// the answers into a single stable-ordered list.
type Aggregator struct {
	client   RateClient
	origin   string
	couriers []string
	timeout  time.Duration
}

// NewAggregator builds an Aggregator. origin may be empty when the store has
// no shipping configuration yet; Aggregate then degrades instead of failing.
func NewAggregator(client RateClient, origin string, couriers []string, perCarrierTimeout time.Duration) *Aggregator {
	return &Aggregator{
		client:   client,
		origin:   origin,
		couriers: couriers,
		timeout:  perCarrierTimeout,
	}
}

// Aggregate collects quotes for destination and weightGrams from every
// configured courier. Carrier calls run concurrently, each bounded by its own
// timeout; one carrier failing, answering empty, or timing out never aborts
// the others. The merged list is ordered by courier configuration order and
// then by each carrier's own response order, regardless of completion order.
// Aggregate never returns an error.
func (a *Aggregator) Aggregate(ctx context.Context, destination string, weightGrams int) AggregateResult {
	res := AggregateResult{
		Origin:      a.origin,
		Destination: destination,
		WeightGrams: weightGrams,
		Quotes:      []Quote{},
	}

	lg := zctx.From(ctx)

	if a.origin == "" {
		lg.Error("Shipping aggregation skipped: origin not configured")
		res.Reason = ReasonMissingOrigin
		return res
	}
	if destination == "" || weightGrams <= 0 {
		lg.Error("Shipping aggregation skipped: invalid request",
			zap.String("destination", destination),
			zap.Int("weight_grams", weightGrams),
		)
		res.Reason = ReasonInvalidRequest
		return res
	}

	// Each courier writes into its own slot so the merge is order-stable no
	// matter which call finishes first.
	perCourier := make([][]Quote, len(a.couriers))

	g, gctx := errgroup.WithContext(ctx)
	for i, courier := range a.couriers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			quotes, err := a.client.Quote(callCtx, a.origin, destination, weightGrams, courier)
			if err != nil {
				// Isolated provider failure: log and contribute nothing.
				lg.Warn("Carrier quote failed",
					zap.String("courier", courier),
					zap.Error(err),
				)
				return nil
			}
			if len(quotes) == 0 {
				lg.Warn("Carrier returned no quotes", zap.String("courier", courier))
				return nil
			}
			perCourier[i] = quotes
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	for _, quotes := range perCourier {
		res.Quotes = append(res.Quotes, quotes...)
	}
	return res
}
