package service

import (
	"context"
	"fmt"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/model"
	"github.com/google/uuid"
)

// Products manages the catalog.
type Products struct {
	store ProductStore
	aside *cache.Aside
	opts  options
}

func NewProducts(store ProductStore, aside *cache.Aside, opts ...Option) *Products {
	return &Products{store: store, aside: aside, opts: buildOptions("products", opts)}
}

// List returns the catalog, cached under all_products.
func (s *Products) List(ctx context.Context) ([]model.Product, error) {
	return cache.ReadThrough(ctx, s.aside, cache.AllProductsKey(), s.store.ListProducts)
}

// Get loads one product straight from the store.
func (s *Products) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// Save creates p when it has no id, otherwise updates the existing product.
// Carts that hold the product are invalidated along with the catalog since
// their snapshots and totals embed its fields.
func (s *Products) Save(ctx context.Context, p *model.Product) (created bool, err error) {
	if p.ID != uuid.Nil {
		if _, err := s.store.GetProduct(ctx, p.ID); err != nil {
			return false, err
		}
	}
	created, err = s.store.SaveProduct(ctx, p)
	if err != nil {
		return false, err
	}

	var owners []uuid.UUID
	if !created {
		owners, err = s.store.CustomersWithProduct(ctx, p.ID)
		if err != nil {
			s.opts.logger.WarnContext(ctx, "could not resolve carts holding product",
				"product_id", p.ID.String(),
				"error", err,
			)
		}
	}
	s.aside.Invalidate(ctx, cache.ProductScope(customerKeys(owners)...)...)
	return created, nil
}

// Remove deletes the product. Carts containing it are removed with it.
func (s *Products) Remove(ctx context.Context, id uuid.UUID) error {
	owners, err := s.store.RemoveProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("remove product: %w", err)
	}
	s.aside.Invalidate(ctx, cache.ProductScope(customerKeys(owners)...)...)
	return nil
}
