package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-storefront/internal/cacheinfra"
	"github.com/goliatone/go-storefront/model"
	"github.com/goliatone/go-storefront/notify"
	"github.com/google/uuid"
)

// fakeStore is an in-memory store that counts calls per method.
type fakeStore struct {
	mu        sync.Mutex
	calls     map[string]int
	products  map[uuid.UUID]model.Product
	customers map[uuid.UUID]model.Customer
	carts     map[uuid.UUID]model.Cart
	failWith  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		calls:     map[string]int{},
		products:  map[uuid.UUID]model.Product{},
		customers: map[uuid.UUID]model.Customer{},
		carts:     map[uuid.UUID]model.Cart{},
	}
}

func (f *fakeStore) record(name string) error {
	f.calls[name]++
	return f.failWith
}

func (f *fakeStore) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStore) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = map[string]int{}
}

func (f *fakeStore) addProduct(p model.Product) {
	f.products[p.ID] = p
}

func (f *fakeStore) addCustomer(c model.Customer) {
	f.customers[c.ID] = c
}

func (f *fakeStore) ListProducts(context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListProducts"); err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeStore) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetProduct"); err != nil {
		return model.Product{}, err
	}
	p, ok := f.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (f *fakeStore) FindProducts(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("FindProducts"); err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := f.products[id]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) SaveProduct(_ context.Context, p *model.Product) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveProduct"); err != nil {
		return false, err
	}
	created := p.ID == uuid.Nil
	if created {
		p.ID = uuid.New()
	}
	f.products[p.ID] = *p
	for owner, c := range f.carts {
		for i := range c.Products {
			if c.Products[i].ID == p.ID {
				c.Products[i] = *p
			}
		}
		f.carts[owner] = c
	}
	return created, nil
}

func (f *fakeStore) RemoveProduct(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RemoveProduct"); err != nil {
		return nil, err
	}
	if _, ok := f.products[id]; !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	var owners []uuid.UUID
	for owner, c := range f.carts {
		if c.HasProduct(id) {
			owners = append(owners, owner)
			delete(f.carts, owner)
		}
	}
	delete(f.products, id)
	return owners, nil
}

func (f *fakeStore) CustomersWithProduct(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CustomersWithProduct"); err != nil {
		return nil, err
	}
	var owners []uuid.UUID
	for owner, c := range f.carts {
		if c.HasProduct(id) {
			owners = append(owners, owner)
		}
	}
	return owners, nil
}

func (f *fakeStore) ListCustomers(context.Context) ([]model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListCustomers"); err != nil {
		return nil, err
	}
	out := make([]model.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeStore) GetCustomer(_ context.Context, id uuid.UUID) (model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetCustomer"); err != nil {
		return model.Customer{}, err
	}
	c, ok := f.customers[id]
	if !ok {
		return model.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (f *fakeStore) SaveCustomer(_ context.Context, c *model.Customer) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveCustomer"); err != nil {
		return false, err
	}
	created := c.ID == uuid.Nil
	if created {
		c.ID = uuid.New()
	}
	f.customers[c.ID] = *c
	return created, nil
}

func (f *fakeStore) RemoveCustomer(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RemoveCustomer"); err != nil {
		return err
	}
	if _, ok := f.customers[id]; !ok {
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	delete(f.carts, id)
	delete(f.customers, id)
	return nil
}

func (f *fakeStore) CustomersWithCarts(context.Context) ([]model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CustomersWithCarts"); err != nil {
		return nil, err
	}
	out := make([]model.Customer, 0, len(f.carts))
	for owner := range f.carts {
		out = append(out, f.customers[owner])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeStore) CartByCustomer(_ context.Context, customerID uuid.UUID) (model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CartByCustomer"); err != nil {
		return model.Cart{}, err
	}
	c, ok := f.carts[customerID]
	if !ok {
		return model.Cart{}, fmt.Errorf("cart of %s: %w", customerID, ErrNotFound)
	}
	owner := f.customers[customerID]
	c.Customer = &owner
	c.Products = append([]model.Product(nil), c.Products...)
	return c, nil
}

func (f *fakeStore) GetCart(_ context.Context, cartID uuid.UUID) (model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetCart"); err != nil {
		return model.Cart{}, err
	}
	for _, c := range f.carts {
		if c.ID == cartID {
			c.Products = append([]model.Product(nil), c.Products...)
			return c, nil
		}
	}
	return model.Cart{}, fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
}

func (f *fakeStore) SaveCart(_ context.Context, c *model.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveCart"); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
		c.CreatedAt = time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)
	}
	stored := *c
	stored.Customer = nil
	stored.Products = append([]model.Product(nil), c.Products...)
	f.carts[c.CustomerID] = stored
	return nil
}

func (f *fakeStore) RemoveCart(_ context.Context, cartID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RemoveCart"); err != nil {
		return err
	}
	for owner, c := range f.carts {
		if c.ID == cartID {
			delete(f.carts, owner)
			return nil
		}
	}
	return fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
}

func (f *fakeStore) HasCart(_ context.Context, customerID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("HasCart"); err != nil {
		return false, err
	}
	_, ok := f.carts[customerID]
	return ok, nil
}

func (f *fakeStore) CartProductCount(_ context.Context, customerID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CartProductCount"); err != nil {
		return 0, err
	}
	return int64(len(f.carts[customerID].Products)), nil
}

func (f *fakeStore) CartTotalPrice(_ context.Context, customerID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CartTotalPrice"); err != nil {
		return 0, err
	}
	var total int64
	for _, p := range f.carts[customerID].Products {
		total += p.Price
	}
	return total, nil
}

// recordingPort wraps the in-process cache and keeps every deleted key.
type recordingPort struct {
	mu      sync.Mutex
	inner   *cacheinfra.MemoryStore
	deleted []string
	sets    []string
	failAll bool
}

func newRecordingPort() *recordingPort {
	return &recordingPort{inner: cacheinfra.NewMemoryStore(time.Minute)}
}

var errPortDown = errors.New("cache: backend unavailable")

func (r *recordingPort) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.failAll {
		return nil, false, errPortDown
	}
	return r.inner.Get(ctx, key)
}

func (r *recordingPort) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.mu.Lock()
	r.sets = append(r.sets, key)
	r.mu.Unlock()
	if r.failAll {
		return errPortDown
	}
	return r.inner.Set(ctx, key, value, ttl)
}

func (r *recordingPort) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	r.deleted = append(r.deleted, key)
	r.mu.Unlock()
	if r.failAll {
		return errPortDown
	}
	return r.inner.Delete(ctx, key)
}

func (r *recordingPort) deletedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

func (r *recordingPort) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = nil
	r.sets = nil
}

func (r *recordingPort) has(key string) bool {
	_, ok, _ := r.inner.Get(context.Background(), key)
	return ok
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}
