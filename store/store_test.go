package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/internal/cacheinfra"
	"github.com/goliatone/go-storefront/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return New(db)
}

func seedProduct(t *testing.T, s *Store, code string, price int64) model.Product {
	t.Helper()
	p := &model.Product{Code: code, Title: "Product " + code, Price: price}
	created, err := s.SaveProduct(context.Background(), p)
	require.NoError(t, err)
	require.True(t, created)
	return *p
}

func seedCustomer(t *testing.T, s *Store, email string) model.Customer {
	t.Helper()
	c := &model.Customer{Email: email, PhoneNumber: "+1000"}
	_, err := s.SaveCustomer(context.Background(), c)
	require.NoError(t, err)
	return *c
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	assert.Error(t, err)

	_, err = Open(Config{Driver: DriverPostgres})
	assert.Error(t, err, "postgres without dsn")
}

func TestProducts_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedProduct(t, s, "B", 200)
	a := seedProduct(t, s, "A", 100)

	list, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Code)
	assert.Equal(t, "B", list[1].Code)

	got, err := s.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	b.Price = 250
	created, err := s.SaveProduct(ctx, &b)
	require.NoError(t, err)
	assert.False(t, created)

	got, err = s.GetProduct(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), got.Price)

	_, err = s.GetProduct(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindProducts_PreservesOrderAndRejectsUnknown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedProduct(t, s, "A", 1)
	b := seedProduct(t, s, "B", 2)

	got, err := s.FindProducts(ctx, []uuid.UUID{b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	_, err = s.FindProducts(ctx, []uuid.UUID{a.ID, uuid.New()})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCarts_SaveLoadAndAggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedProduct(t, s, "A", 100)
	b := seedProduct(t, s, "B", 250)
	customer := seedCustomer(t, s, "ann@example.com")

	cart := &model.Cart{CustomerID: customer.ID, Products: []model.Product{b, a}}
	require.NoError(t, s.SaveCart(ctx, cart))
	require.NotEqual(t, uuid.Nil, cart.ID)

	loaded, err := s.CartByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, loaded.ID)
	require.NotNil(t, loaded.Customer)
	assert.Equal(t, "ann@example.com", loaded.Customer.Email)
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, loaded.ProductIDs())

	count, err := s.CartProductCount(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err := s.CartTotalPrice(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(350), total)

	loaded.Products = []model.Product{a}
	require.NoError(t, s.SaveCart(ctx, &loaded))

	byID, err := s.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, byID.ProductIDs())

	owners, err := s.CustomersWithProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{customer.ID}, owners)

	withCarts, err := s.CustomersWithCarts(ctx)
	require.NoError(t, err)
	require.Len(t, withCarts, 1)
	assert.Equal(t, customer.ID, withCarts[0].ID)
}

func TestAggregates_NoCartIsZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CartProductCount(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)

	total, err := s.CartTotalPrice(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRemoveCart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedProduct(t, s, "A", 100)
	customer := seedCustomer(t, s, "bob@example.com")

	cart := &model.Cart{CustomerID: customer.ID, Products: []model.Product{a}}
	require.NoError(t, s.SaveCart(ctx, cart))
	has, err := s.HasCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.RemoveCart(ctx, cart.ID))

	has, err = s.HasCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = s.CartByCustomer(ctx, customer.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.RemoveCart(ctx, cart.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRemoveProduct_CascadesToCarts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedProduct(t, s, "A", 100)
	b := seedProduct(t, s, "B", 100)
	ann := seedCustomer(t, s, "ann@example.com")
	bob := seedCustomer(t, s, "bob@example.com")

	require.NoError(t, s.SaveCart(ctx, &model.Cart{CustomerID: ann.ID, Products: []model.Product{a, b}}))
	require.NoError(t, s.SaveCart(ctx, &model.Cart{CustomerID: bob.ID, Products: []model.Product{b}}))

	owners, err := s.RemoveProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ann.ID}, owners)

	_, err = s.CartByCustomer(ctx, ann.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	kept, err := s.CartByCustomer(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, kept.ProductIDs())

	_, err = s.RemoveProduct(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRemoveCustomer_DropsCart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedProduct(t, s, "A", 100)
	customer := seedCustomer(t, s, "cat@example.com")
	require.NoError(t, s.SaveCart(ctx, &model.Cart{CustomerID: customer.ID, Products: []model.Product{a}}))

	require.NoError(t, s.RemoveCustomer(ctx, customer.ID))

	_, err := s.GetCustomer(ctx, customer.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	count, err := s.CartProductCount(ctx, customer.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	list, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEntityCache_CustomerLookupsAndRemoval(t *testing.T) {
	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))

	port := cacheinfra.NewMemoryStore(time.Minute)
	s := New(db, WithEntityCache(cache.NewAside(port)))
	ctx := context.Background()

	customer := seedCustomer(t, s, "dora@example.com")
	got, err := s.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.Email, got.Email)

	key := cache.ResourceKey("customer", customer.ID.String())
	_, found, err := port.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found, "lookup should populate %s", key)

	customer.PhoneNumber = "+2000"
	_, err = s.SaveCustomer(ctx, &customer)
	require.NoError(t, err)
	got, err = s.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "+2000", got.PhoneNumber)

	require.NoError(t, s.RemoveCustomer(ctx, customer.ID))
	_, found, _ = port.Get(ctx, key)
	assert.False(t, found, "removal should drop %s", key)
	_, err = s.GetCustomer(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
