// Package cache provides the cache-aside layer that sits between the storefront
// services and the persistent store.
//
// # Overview
//
// The package exports three pieces:
//
//   - Port: a minimal key-value contract with expiry (Get, Set, Delete)
//   - Keyspace: pure key functions and the TTL Policy per resource kind
//   - Aside: generic read-through and write-invalidate logic shared by every resource
//
// # Basic Usage
//
//	port, err := cache.NewPort(cache.Config{Backend: cache.BackendSturdyc, ...})
//	aside := cache.NewAside(port, cache.WithLogger(logger))
//
//	products, err := cache.ReadThrough(ctx, aside, cache.AllProductsKey(),
//		func(ctx context.Context) ([]model.Product, error) {
//			return store.ListProducts(ctx)
//		})
//
//	// after the store write committed
//	aside.Invalidate(ctx, cache.ProductScope()...)
//
// # Keyspace
//
//	cart_{customerId}              1 hour
//	all_products                   30 days
//	all_customers                  default (600s)
//	customer_{id}_statistics       default
//	all_customers_statistics       default
//
// Kinds outside that table use resource:{kind}:{id}, resource:{kind}:all,
// stats:{id} and stats:all with the default TTL.
//
// # Failure Semantics
//
// A miss is never an error. Backend failures (ErrCacheUnavailable) are logged and
// the read falls through to the loader; invalidation failures are logged and the
// stale entry ages out with its TTL. Only loader errors reach the caller.
//
// There is no single-flight coalescing: concurrent misses on the same key may all
// invoke the loader and all write the cache.
package cache
