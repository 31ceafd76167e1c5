package store

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-storefront/model"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func byCustomer(customerID uuid.UUID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.customer_id = ?", customerID.String())
	}
}

func withCustomer() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Customer")
	}
}

// CartByCustomer loads the customer's cart with its owner and ordered products.
func (s *Store) CartByCustomer(ctx context.Context, customerID uuid.UUID) (model.Cart, error) {
	records, _, err := s.carts.List(ctx, withCustomer(), byCustomer(customerID), limitOne)
	cart, err := first(records, err)
	if err != nil {
		return model.Cart{}, fmt.Errorf("store: cart of customer %s: %w", customerID, err)
	}
	if err := loadProducts(ctx, s.db, cart); err != nil {
		return model.Cart{}, fmt.Errorf("store: cart %s products: %w", cart.ID, err)
	}
	return *cart, nil
}

// GetCart loads a cart by its own id.
func (s *Store) GetCart(ctx context.Context, cartID uuid.UUID) (model.Cart, error) {
	records, _, err := s.carts.List(ctx, withCustomer(), byID(cartID))
	cart, err := first(records, err)
	if err != nil {
		return model.Cart{}, fmt.Errorf("store: get cart %s: %w", cartID, err)
	}
	if err := loadProducts(ctx, s.db, cart); err != nil {
		return model.Cart{}, fmt.Errorf("store: cart %s products: %w", cart.ID, err)
	}
	return *cart, nil
}

// SaveCart writes the cart row and replaces its product list in one
// transaction. A cart without an id is created.
func (s *Store) SaveCart(ctx context.Context, cart *model.Cart) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if cart.ID == uuid.Nil {
			cart.ID = uuid.New()
			if cart.CreatedAt.IsZero() {
				cart.CreatedAt = time.Now().UTC().Truncate(time.Second)
			}
			if _, err := s.carts.CreateTx(ctx, tx, cart); err != nil {
				return err
			}
		} else if _, err := s.carts.UpdateTx(ctx, tx, cart, wherePK()); err != nil {
			return err
		}

		if err := clearProducts(ctx, tx, cart.ID); err != nil {
			return err
		}
		if len(cart.Products) == 0 {
			return nil
		}
		rows := make([]model.CartProduct, 0, len(cart.Products))
		for i, p := range cart.Products {
			rows = append(rows, model.CartProduct{CartID: cart.ID, ProductID: p.ID, Position: i})
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("store: save cart: %w", err)
	}
	return nil
}

// RemoveCart deletes the cart and its product rows.
func (s *Store) RemoveCart(ctx context.Context, cartID uuid.UUID) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		records, _, err := s.carts.ListTx(ctx, tx, byID(cartID))
		cart, err := first(records, err)
		if err != nil {
			return err
		}
		return s.deleteCartTx(ctx, tx, cart)
	})
	if err != nil {
		return fmt.Errorf("store: remove cart %s: %w", cartID, err)
	}
	return nil
}

func (s *Store) deleteCartTx(ctx context.Context, tx bun.IDB, cart *model.Cart) error {
	if err := clearProducts(ctx, tx, cart.ID); err != nil {
		return err
	}
	return s.carts.DeleteTx(ctx, tx, cart)
}

func clearProducts(ctx context.Context, db bun.IDB, cartID uuid.UUID) error {
	_, err := db.NewDelete().
		Model((*model.CartProduct)(nil)).
		Where("cart_id = ?", cartID.String()).
		Exec(ctx)
	return err
}

func loadProducts(ctx context.Context, db bun.IDB, cart *model.Cart) error {
	var products []model.Product
	err := db.NewSelect().
		Model(&products).
		Join("JOIN cart_products AS cp ON cp.product_id = p.id").
		Where("cp.cart_id = ?", cart.ID.String()).
		OrderExpr("cp.position ASC").
		Scan(ctx)
	if err != nil {
		return err
	}
	cart.Products = products
	return nil
}

func limitOne(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Limit(1)
}

// HasCart reports whether the customer owns a cart.
func (s *Store) HasCart(ctx context.Context, customerID uuid.UUID) (bool, error) {
	n, err := s.carts.Count(ctx, byCustomer(customerID))
	if err != nil {
		return false, fmt.Errorf("store: has cart %s: %w", customerID, err)
	}
	return n > 0, nil
}
