package service

import (
	"context"
	"fmt"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/stats"
	"github.com/google/uuid"
)

// Statistics reports cart statistics per customer.
type Statistics struct {
	store StatisticsStore
	aside *cache.Aside
	opts  options
}

func NewStatistics(store StatisticsStore, aside *cache.Aside, opts ...Option) *Statistics {
	return &Statistics{store: store, aside: aside, opts: buildOptions("statistics", opts)}
}

// ForCustomer returns the statistics of a customer that owns a cart. A cached
// record is rebuilt without touching the store.
func (s *Statistics) ForCustomer(ctx context.Context, customerID uuid.UUID) (stats.CustomerStatistics, error) {
	record, err := cache.ReadThrough(ctx, s.aside, cache.CustomerStatisticsKey(customerID.String()), func(ctx context.Context) (stats.Record, error) {
		if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
			return stats.Record{}, err
		}
		has, err := s.store.HasCart(ctx, customerID)
		if err != nil {
			return stats.Record{}, err
		}
		if !has {
			return stats.Record{}, fmt.Errorf("customer %s: %w", customerID, ErrNoCart)
		}
		computed, err := stats.Compute(ctx, s.store, customerID)
		if err != nil {
			return stats.Record{}, err
		}
		return stats.Flatten(ctx, computed)
	})
	if err != nil {
		return stats.CustomerStatistics{}, err
	}
	return stats.FromSnapshot(record), nil
}

// All returns statistics for every customer that owns a cart, cached under
// all_customers_statistics.
func (s *Statistics) All(ctx context.Context) ([]stats.Record, error) {
	return cache.ReadThrough(ctx, s.aside, cache.AllCustomerStatisticsKey(), func(ctx context.Context) ([]stats.Record, error) {
		customers, err := s.store.CustomersWithCarts(ctx)
		if err != nil {
			return nil, err
		}
		all := make([]stats.CustomerStatistics, 0, len(customers))
		for _, c := range customers {
			computed, err := stats.Compute(ctx, s.store, c.ID)
			if err != nil {
				return nil, err
			}
			all = append(all, computed)
		}
		return stats.FlattenAll(ctx, all)
	})
}
