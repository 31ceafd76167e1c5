package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CartProductCount is the number of products in the customer's cart.
func (s *Store) CartProductCount(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.NewSelect().
		TableExpr("cart_products AS cp").
		ColumnExpr("COUNT(cp.product_id)").
		Join("JOIN carts AS c ON c.id = cp.cart_id").
		Where("c.customer_id = ?", customerID.String()).
		Scan(ctx, &count)
	if err != nil {
		return 0, fmt.Errorf("store: cart product count %s: %w", customerID, err)
	}
	return count, nil
}

// CartTotalPrice sums the prices of the products in the customer's cart.
func (s *Store) CartTotalPrice(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.NewSelect().
		TableExpr("cart_products AS cp").
		ColumnExpr("COALESCE(SUM(p.price), 0)").
		Join("JOIN carts AS c ON c.id = cp.cart_id").
		Join("JOIN products AS p ON p.id = cp.product_id").
		Where("c.customer_id = ?", customerID.String()).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("store: cart total price %s: %w", customerID, err)
	}
	return total, nil
}
