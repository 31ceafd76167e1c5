// Package repositorycache decorates go-repository-bun repositories with a
// cache of single-record lookups.
//
// # Basic Usage
//
//	base := store.NewCustomerRepository(db)
//	customers := repositorycache.New(base, aside, "customer")
//
//	c, err := customers.GetByID(ctx, id.String())    // resource:customer:{id}
//	_, err = customers.Update(ctx, c)                  // drops the key
//
// # Cached vs Pass-through Operations
//
// Only GetByID is cached. List, Count, Get and the Create family pass through,
// as do every Tx variant: a transaction may still roll back, so the caller
// invokes Forget once it has committed.
//
// Collection views are not cached here. The storefront services keep those
// under their own keys (all_products, all_customers) and invalidate them.
package repositorycache
