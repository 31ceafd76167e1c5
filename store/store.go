// Package store persists products, customers and carts with bun. Entity CRUD
// goes through go-repository-bun repositories; cart membership and the
// statistics aggregates are plain bun queries over the cart_products table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/model"
	"github.com/goliatone/go-storefront/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("store: record not found")

// Config selects the database.
type Config struct {
	Driver string
	DSN    string
}

// Open connects to the configured database and returns a bun handle.
// SQLite connections are capped at one so in-memory databases are shared.
func Open(cfg Config) (*bun.DB, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite", DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		sqldb, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres, "pg":
		if cfg.DSN == "" {
			return nil, errors.New("store: postgres dsn is required")
		}
		sqldb, err := sql.Open(DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("store: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}

// Migrate creates the storefront tables when they do not exist.
func Migrate(ctx context.Context, db bun.IDB) error {
	models := []any{
		(*model.Product)(nil),
		(*model.Customer)(nil),
		(*model.Cart)(nil),
		(*model.CartProduct)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: migrate %T: %w", m, err)
		}
	}
	return nil
}

// Store is the persistence layer used by the services.
type Store struct {
	db        *bun.DB
	products  *repositorycache.Entity[*model.Product]
	customers *repositorycache.Entity[*model.Customer]
	carts     repository.Repository[*model.Cart]
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	aside *cache.Aside
}

// WithEntityCache caches product and customer lookups by id under
// resource:product:{id} and resource:customer:{id}.
func WithEntityCache(aside *cache.Aside) Option {
	return func(o *storeOptions) { o.aside = aside }
}

// New builds a Store over db.
func New(db *bun.DB, opts ...Option) *Store {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		db:        db,
		products:  repositorycache.New(NewProductRepository(db), o.aside, "product"),
		customers: repositorycache.New(NewCustomerRepository(db), o.aside, "customer"),
		carts:     NewCartRepository(db),
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func NewProductRepository(db *bun.DB) repository.Repository[*model.Product] {
	return repository.NewRepository[*model.Product](db, repository.ModelHandlers[*model.Product]{
		NewRecord: func() *model.Product { return &model.Product{} },
		GetID: func(p *model.Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID:         func(p *model.Product, id uuid.UUID) { p.ID = id },
		GetIdentifier: func() string { return "code" },
	})
}

func NewCustomerRepository(db *bun.DB) repository.Repository[*model.Customer] {
	return repository.NewRepository[*model.Customer](db, repository.ModelHandlers[*model.Customer]{
		NewRecord: func() *model.Customer { return &model.Customer{} },
		GetID: func(c *model.Customer) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID:         func(c *model.Customer, id uuid.UUID) { c.ID = id },
		GetIdentifier: func() string { return "email" },
	})
}

func NewCartRepository(db *bun.DB) repository.Repository[*model.Cart] {
	return repository.NewRepository[*model.Cart](db, repository.ModelHandlers[*model.Cart]{
		NewRecord: func() *model.Cart { return &model.Cart{} },
		GetID: func(c *model.Cart) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID:         func(c *model.Cart, id uuid.UUID) { c.ID = id },
		GetIdentifier: func() string { return "customer_id" },
	})
}

func byID(id uuid.UUID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id.String()).Limit(1)
	}
}

func wherePK() repository.UpdateCriteria {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.WherePK()
	}
}

// first returns the single row a byID style lookup produced or ErrNotFound.
func first[T any](records []T, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, notFound(err)
	}
	if len(records) == 0 {
		return zero, ErrNotFound
	}
	return records[0], nil
}

// notFound maps the driver and entity cache misses onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, repositorycache.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
