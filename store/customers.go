package store

import (
	"context"
	"fmt"

	"github.com/goliatone/go-storefront/model"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListCustomers returns every customer ordered by email.
func (s *Store) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	records, _, err := s.customers.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.email ASC")
	})
	if err != nil {
		return nil, fmt.Errorf("store: list customers: %w", err)
	}
	return derefAll(records), nil
}

// GetCustomer loads one customer.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	c, err := s.customers.GetByID(ctx, id.String())
	if err != nil {
		return model.Customer{}, fmt.Errorf("store: get customer %s: %w", id, notFound(err))
	}
	return *c, nil
}

// SaveCustomer inserts c when it has no id yet, otherwise updates it in place.
func (s *Store) SaveCustomer(ctx context.Context, c *model.Customer) (created bool, err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
		if _, err := s.customers.Create(ctx, c); err != nil {
			return false, fmt.Errorf("store: create customer: %w", err)
		}
		return true, nil
	}
	if _, err := s.customers.Update(ctx, c, wherePK()); err != nil {
		return false, fmt.Errorf("store: update customer %s: %w", c.ID, err)
	}
	return false, nil
}

// RemoveCustomer deletes the customer and their cart, if any.
func (s *Store) RemoveCustomer(ctx context.Context, id uuid.UUID) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		records, _, err := s.customers.ListTx(ctx, tx, byID(id))
		c, err := first(records, err)
		if err != nil {
			return err
		}

		carts, _, err := s.carts.ListTx(ctx, tx, byCustomer(id))
		if err != nil {
			return err
		}
		for _, cart := range carts {
			if err := s.deleteCartTx(ctx, tx, cart); err != nil {
				return err
			}
		}
		return s.customers.DeleteTx(ctx, tx, c)
	})
	if err != nil {
		return fmt.Errorf("store: remove customer %s: %w", id, err)
	}
	s.customers.Forget(ctx, id)
	return nil
}

// CustomersWithCarts lists the customers that currently own a cart.
func (s *Store) CustomersWithCarts(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := s.db.NewSelect().
		Model(&customers).
		Join("JOIN carts AS c ON c.customer_id = cu.id").
		OrderExpr("cu.email ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: customers with carts: %w", err)
	}
	return customers, nil
}

func derefAll[T any](records []*T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
