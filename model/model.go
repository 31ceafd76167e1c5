// Package model holds the storefront entities shared by the store, the services
// and the cache snapshots.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Product is a catalog entry. Price is in minor units.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID    uuid.UUID `bun:"id,pk,type:varchar(36)" json:"id"`
	Code  string    `bun:"code,notnull,unique" json:"code"`
	Title string    `bun:"title,notnull" json:"title"`
	Price int64     `bun:"price,notnull" json:"price"`
}

// Customer owns at most one cart.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:cu"`

	ID          uuid.UUID `bun:"id,pk,type:varchar(36)" json:"id"`
	Email       string    `bun:"email,notnull" json:"email"`
	PhoneNumber string    `bun:"phone_number,notnull" json:"phoneNumber"`
}

// Cart is the aggregate persisted across carts and cart_products. Products keeps
// the submission order and never holds the same product twice.
type Cart struct {
	bun.BaseModel `bun:"table:carts,alias:c"`

	ID         uuid.UUID `bun:"id,pk,type:varchar(36)"`
	CustomerID uuid.UUID `bun:"customer_id,type:varchar(36),notnull,unique"`
	CreatedAt  time.Time `bun:"created_at,notnull"`

	Customer *Customer `bun:"rel:belongs-to,join:customer_id=id"`
	Products []Product `bun:"-"`
}

// CartProduct is one row of the cart/product join table.
type CartProduct struct {
	bun.BaseModel `bun:"table:cart_products,alias:cp"`

	CartID    uuid.UUID `bun:"cart_id,pk,type:varchar(36)"`
	ProductID uuid.UUID `bun:"product_id,pk,type:varchar(36)"`
	Position  int       `bun:"position,notnull"`
}

// ProductIDs returns the ids of the cart's products in order.
func (c Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Products))
	for _, p := range c.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// HasProduct reports membership by id.
func (c Cart) HasProduct(id uuid.UUID) bool {
	for _, p := range c.Products {
		if p.ID == id {
			return true
		}
	}
	return false
}
