// Package service implements the storefront resources on top of the store and
// the cache-aside layer. Reads of cached views go through cache.ReadThrough;
// every mutation commits to the store first and then invalidates the keys it
// made stale. Cache failures never reach callers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-storefront/model"
	"github.com/goliatone/go-storefront/notify"
	"github.com/goliatone/go-storefront/stats"
	"github.com/goliatone/go-storefront/store"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist or does
	// not belong to the given owner.
	ErrNotFound = store.ErrNotFound
	// ErrValidation marks input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrNoCart is returned for statistics of a customer without a cart.
	ErrNoCart = fmt.Errorf("customer has no cart: %w", ErrNotFound)
)

// ProductStore is the persistence the Products service needs.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	SaveProduct(ctx context.Context, p *model.Product) (bool, error)
	RemoveProduct(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	CustomersWithProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
}

// CustomerStore is the persistence the Customers service needs.
type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	SaveCustomer(ctx context.Context, c *model.Customer) (bool, error)
	RemoveCustomer(ctx context.Context, id uuid.UUID) error
}

// CartStore is the persistence the Carts service needs.
type CartStore interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	CartByCustomer(ctx context.Context, customerID uuid.UUID) (model.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (model.Cart, error)
	SaveCart(ctx context.Context, c *model.Cart) error
	RemoveCart(ctx context.Context, cartID uuid.UUID) error
}

// StatisticsStore is the persistence the Statistics service needs.
type StatisticsStore interface {
	stats.Source
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	HasCart(ctx context.Context, customerID uuid.UUID) (bool, error)
	CustomersWithCarts(ctx context.Context) ([]model.Customer, error)
}

// Notifier receives customer lifecycle events without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, notify.Event) {}

type options struct {
	logger   *slog.Logger
	notifier Notifier
}

// Option configures a service.
type Option func(*options)

// WithLogger sets the logger, defaulting to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNotifier sets where customer notifications go.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

func buildOptions(component string, opts []Option) options {
	o := options{logger: slog.Default(), notifier: nopNotifier{}}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("component", component)
	return o
}

func customerKeys(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
