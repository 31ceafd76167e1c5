package store

import (
	"context"
	"fmt"

	"github.com/goliatone/go-storefront/model"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListProducts returns the catalog ordered by code.
func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	records, _, err := s.products.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.code ASC")
	})
	if err != nil {
		return nil, fmt.Errorf("store: list products: %w", err)
	}
	return derefAll(records), nil
}

// GetProduct loads one product.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	p, err := s.products.GetByID(ctx, id.String())
	if err != nil {
		return model.Product{}, fmt.Errorf("store: get product %s: %w", id, notFound(err))
	}
	return *p, nil
}

// FindProducts loads every id in ids and returns them in the same order.
// Any unknown id fails the whole lookup with ErrNotFound.
func (s *Store) FindProducts(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}
	records, _, err := s.products.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id IN (?)", bun.In(keys))
	})
	if err != nil {
		return nil, fmt.Errorf("store: find products: %w", err)
	}
	found := make(map[uuid.UUID]model.Product, len(records))
	for _, p := range records {
		found[p.ID] = *p
	}
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("store: product %s: %w", id, ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

// SaveProduct inserts p when it has no id yet, otherwise updates it in place.
func (s *Store) SaveProduct(ctx context.Context, p *model.Product) (created bool, err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
		if _, err := s.products.Create(ctx, p); err != nil {
			return false, fmt.Errorf("store: create product: %w", err)
		}
		return true, nil
	}
	if _, err := s.products.Update(ctx, p, wherePK()); err != nil {
		return false, fmt.Errorf("store: update product %s: %w", p.ID, err)
	}
	return false, nil
}

// RemoveProduct deletes the product together with every cart that holds it
// and returns the owners of those carts.
func (s *Store) RemoveProduct(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var owners []uuid.UUID
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		records, _, err := s.products.ListTx(ctx, tx, byID(id))
		p, err := first(records, err)
		if err != nil {
			return err
		}

		var carts []model.Cart
		err = tx.NewSelect().
			Model(&carts).
			Join("JOIN cart_products AS cp ON cp.cart_id = c.id").
			Where("cp.product_id = ?", id.String()).
			Scan(ctx)
		if err != nil {
			return err
		}
		for i := range carts {
			if err := s.deleteCartTx(ctx, tx, &carts[i]); err != nil {
				return err
			}
			owners = append(owners, carts[i].CustomerID)
		}

		return s.products.DeleteTx(ctx, tx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("store: remove product %s: %w", id, err)
	}
	s.products.Forget(ctx, id)
	return owners, nil
}

// CustomersWithProduct lists the owners of carts that contain the product.
func (s *Store) CustomersWithProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var owners []uuid.UUID
	err := s.db.NewSelect().
		TableExpr("carts AS c").
		ColumnExpr("c.customer_id").
		Join("JOIN cart_products AS cp ON cp.cart_id = c.id").
		Where("cp.product_id = ?", productID.String()).
		OrderExpr("c.customer_id ASC").
		Scan(ctx, &owners)
	if err != nil {
		return nil, fmt.Errorf("store: customers with product %s: %w", productID, err)
	}
	return owners, nil
}
