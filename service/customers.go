package service

import (
	"context"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/model"
	"github.com/goliatone/go-storefront/notify"
	"github.com/google/uuid"
)

// Customers manages customer records.
type Customers struct {
	store CustomerStore
	aside *cache.Aside
	opts  options
}

func NewCustomers(store CustomerStore, aside *cache.Aside, opts ...Option) *Customers {
	return &Customers{store: store, aside: aside, opts: buildOptions("customers", opts)}
}

// List returns every customer, cached under all_customers.
func (s *Customers) List(ctx context.Context) ([]model.Customer, error) {
	return cache.ReadThrough(ctx, s.aside, cache.AllCustomersKey(), s.store.ListCustomers)
}

func (s *Customers) Get(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

// Save creates or updates c, drops all_customers and sends a created or
// updated notification. An update also drops the customer's cart snapshot.
func (s *Customers) Save(ctx context.Context, c *model.Customer) (created bool, err error) {
	if c.ID != uuid.Nil {
		if _, err := s.store.GetCustomer(ctx, c.ID); err != nil {
			return false, err
		}
	}
	created, err = s.store.SaveCustomer(ctx, c)
	if err != nil {
		return false, err
	}
	if created {
		s.aside.Invalidate(ctx, cache.CustomerScope()...)
	} else {
		s.aside.Invalidate(ctx, cache.CustomerScope(c.ID.String())...)
	}

	typ := notify.TypeUpdated
	if created {
		typ = notify.TypeCreated
	}
	s.opts.notifier.Notify(ctx, notify.NewEvent(c.ID, typ))
	return created, nil
}

// Remove deletes the customer and their cart and drops every view that
// mentioned them.
func (s *Customers) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.store.RemoveCustomer(ctx, id); err != nil {
		return err
	}
	s.aside.Invalidate(ctx, cache.CustomerRemovalScope(id.String())...)
	return nil
}
