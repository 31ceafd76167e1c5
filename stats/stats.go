// Package stats builds per-customer cart statistics. The expensive total price
// is kept lazy when computed from the store and resolved when rebuilt from a
// cached record, so a cache hit never reaches the store.
package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Source answers the aggregate queries behind a CustomerStatistics.
type Source interface {
	CartProductCount(ctx context.Context, customerID uuid.UUID) (int64, error)
	CartTotalPrice(ctx context.Context, customerID uuid.UUID) (int64, error)
}

// CustomerStatistics describes one customer's cart.
type CustomerStatistics struct {
	CustomerID     uuid.UUID
	CartTotalCount int64
	CartTotalPrice *Lazy
	CompletedCarts int64
}

// Record is the cached and wire form of CustomerStatistics.
type Record struct {
	CustomerID     uuid.UUID `json:"customerId"`
	CartTotalCount int64     `json:"cartTotalCount"`
	CartTotalPrice int64     `json:"cartTotalPrice"`
	CompletedCarts int64     `json:"completedCarts"`
}

// Compute reads the product count eagerly and defers the price sum until it is
// first read.
func Compute(ctx context.Context, source Source, customerID uuid.UUID) (CustomerStatistics, error) {
	count, err := source.CartProductCount(ctx, customerID)
	if err != nil {
		return CustomerStatistics{}, fmt.Errorf("stats: count for %s: %w", customerID, err)
	}
	return CustomerStatistics{
		CustomerID:     customerID,
		CartTotalCount: count,
		CartTotalPrice: Pending(func(ctx context.Context) (int64, error) {
			return source.CartTotalPrice(ctx, customerID)
		}),
		CompletedCarts: completedCarts(customerID),
	}, nil
}

// FromSnapshot rebuilds statistics from a cached record with every field
// resolved.
func FromSnapshot(r Record) CustomerStatistics {
	return CustomerStatistics{
		CustomerID:     r.CustomerID,
		CartTotalCount: r.CartTotalCount,
		CartTotalPrice: Resolved(r.CartTotalPrice),
		CompletedCarts: r.CompletedCarts,
	}
}

// Flatten forces the lazy fields and returns the record form.
func Flatten(ctx context.Context, s CustomerStatistics) (Record, error) {
	price := int64(0)
	if s.CartTotalPrice != nil {
		v, err := s.CartTotalPrice.Value(ctx)
		if err != nil {
			return Record{}, fmt.Errorf("stats: total price for %s: %w", s.CustomerID, err)
		}
		price = v
	}
	return Record{
		CustomerID:     s.CustomerID,
		CartTotalCount: s.CartTotalCount,
		CartTotalPrice: price,
		CompletedCarts: s.CompletedCarts,
	}, nil
}

// FlattenAll flattens in order and stops at the first failure.
func FlattenAll(ctx context.Context, all []CustomerStatistics) ([]Record, error) {
	out := make([]Record, 0, len(all))
	for _, s := range all {
		r, err := Flatten(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Orders are not modeled, so no cart is ever completed.
func completedCarts(uuid.UUID) int64 {
	return 0
}
