package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/cart"
	"github.com/goliatone/go-storefront/model"
	"github.com/google/uuid"
)

// Carts manages the one cart each customer may own.
type Carts struct {
	store       CartStore
	aside       *cache.Aside
	incentiveID uuid.UUID
	opts        options
}

// NewCarts builds the cart service. incentiveID names the product that is
// added to carts holding more than one other product; uuid.Nil disables it.
func NewCarts(store CartStore, aside *cache.Aside, incentiveID uuid.UUID, opts ...Option) *Carts {
	return &Carts{store: store, aside: aside, incentiveID: incentiveID, opts: buildOptions("carts", opts)}
}

// Get returns the customer's cart snapshot, cached under cart_{customerId}.
func (s *Carts) Get(ctx context.Context, customerID uuid.UUID) (cart.Snapshot, error) {
	return cache.ReadThrough(ctx, s.aside, cache.CartKey(customerID.String()), func(ctx context.Context) (cart.Snapshot, error) {
		c, err := s.store.CartByCustomer(ctx, customerID)
		if err != nil {
			return cart.Snapshot{}, err
		}
		return cart.NewSnapshot(c), nil
	})
}

// Submit stores productIDs as the customer's cart, creating it when the
// customer has none yet. created reports which case happened.
func (s *Carts) Submit(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID) (snapshot cart.Snapshot, created bool, err error) {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return cart.Snapshot{}, false, err
	}

	c, err := s.store.CartByCustomer(ctx, customerID)
	switch {
	case errors.Is(err, ErrNotFound):
		c = model.Cart{CustomerID: customerID}
		created = true
	case err != nil:
		return cart.Snapshot{}, false, err
	}

	snapshot, err = s.save(ctx, &c, customer, productIDs)
	return snapshot, created, err
}

// Update replaces the products of cartID, which must belong to customerID.
func (s *Carts) Update(ctx context.Context, customerID, cartID uuid.UUID, productIDs []uuid.UUID) (cart.Snapshot, error) {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	c, err := s.owned(ctx, customerID, cartID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return s.save(ctx, &c, customer, productIDs)
}

// Remove deletes cartID, which must belong to customerID.
func (s *Carts) Remove(ctx context.Context, customerID, cartID uuid.UUID) error {
	if _, err := s.owned(ctx, customerID, cartID); err != nil {
		return err
	}
	if err := s.store.RemoveCart(ctx, cartID); err != nil {
		return err
	}
	s.aside.Invalidate(ctx, cache.CartScope(customerID.String())...)
	return nil
}

// IncentiveProduct returns the configured free product, or nil when none is
// configured or it no longer exists.
func (s *Carts) IncentiveProduct(ctx context.Context) (*model.Product, error) {
	if s.incentiveID == uuid.Nil {
		return nil, nil
	}
	p, err := s.store.GetProduct(ctx, s.incentiveID)
	if errors.Is(err, ErrNotFound) {
		s.opts.logger.WarnContext(ctx, "incentive product not found", "product_id", s.incentiveID.String())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Carts) owned(ctx context.Context, customerID, cartID uuid.UUID) (model.Cart, error) {
	c, err := s.store.GetCart(ctx, cartID)
	if err != nil {
		return model.Cart{}, err
	}
	if c.CustomerID != customerID {
		return model.Cart{}, fmt.Errorf("cart %s of customer %s: %w", cartID, customerID, ErrNotFound)
	}
	return c, nil
}

func (s *Carts) save(ctx context.Context, c *model.Cart, customer model.Customer, productIDs []uuid.UUID) (cart.Snapshot, error) {
	products, err := s.store.FindProducts(ctx, productIDs)
	if errors.Is(err, ErrNotFound) {
		return cart.Snapshot{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		return cart.Snapshot{}, err
	}

	incentive, err := s.IncentiveProduct(ctx)
	if err != nil {
		return cart.Snapshot{}, err
	}

	c.Products = cart.ApplyIncentive(products, incentive)
	if err := s.store.SaveCart(ctx, c); err != nil {
		return cart.Snapshot{}, err
	}
	s.aside.Invalidate(ctx, cache.CartScope(customer.ID.String())...)

	c.Customer = &customer
	return cart.NewSnapshot(*c), nil
}
