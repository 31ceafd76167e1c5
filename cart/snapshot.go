package cart

import (
	"time"

	"github.com/goliatone/go-storefront/model"
	"github.com/google/uuid"
)

// CreatedAtLayout is the wire format of Snapshot.CreatedAt.
const CreatedAtLayout = "2006-01-02 15:04:05"

// Snapshot is the serializable view of a cart that is cached under cart_{id}
// and returned by the API.
type Snapshot struct {
	CartID    uuid.UUID         `json:"cartId"`
	CreatedAt string            `json:"createdAt"`
	Customer  CustomerSnapshot  `json:"customer"`
	Products  []ProductSnapshot `json:"products"`
}

type CustomerSnapshot struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
}

type ProductSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Code  string    `json:"code"`
	Title string    `json:"title"`
	Price int64     `json:"price"`
}

// NewSnapshot maps a loaded cart. The owner falls back to CustomerID when the
// relation was not loaded.
func NewSnapshot(c model.Cart) Snapshot {
	s := Snapshot{
		CartID:    c.ID,
		CreatedAt: c.CreatedAt.UTC().Format(CreatedAtLayout),
		Customer:  CustomerSnapshot{ID: c.CustomerID},
		Products:  make([]ProductSnapshot, 0, len(c.Products)),
	}
	if c.Customer != nil {
		s.Customer.Email = c.Customer.Email
		s.Customer.PhoneNumber = c.Customer.PhoneNumber
	}
	for _, p := range c.Products {
		s.Products = append(s.Products, ProductSnapshot{ID: p.ID, Code: p.Code, Title: p.Title, Price: p.Price})
	}
	return s
}

// ProductIDs returns the product ids in cart order.
func (s Snapshot) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Products))
	for _, p := range s.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// Time parses CreatedAt back, returning the zero time on malformed input.
func (s Snapshot) Time() time.Time {
	t, err := time.ParseInLocation(CreatedAtLayout, s.CreatedAt, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
