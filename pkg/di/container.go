package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/internal/config"
	"github.com/goliatone/go-storefront/internal/httpapi"
	"github.com/goliatone/go-storefront/internal/logging"
	"github.com/goliatone/go-storefront/internal/metrics"
	"github.com/goliatone/go-storefront/notify"
	"github.com/goliatone/go-storefront/service"
	"github.com/goliatone/go-storefront/store"
	"github.com/prometheus/client_golang/prometheus"
)

// Container wires the storefront: cache port and aside layer, store, notifier,
// services and the HTTP handler. It owns the resources it opened and releases
// them in Close.
type Container struct {
	config   config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
	port     cache.Port
	aside    *cache.Aside
	store    *store.Store
	notifier *notify.Async

	products   *service.Products
	customers  *service.Customers
	carts      *service.Carts
	statistics *service.Statistics
	handler    http.Handler

	closers []func() error
}

// Option overrides a dependency the container would otherwise build.
type Option func(*containerOptions)

type containerOptions struct {
	logger     *slog.Logger
	registry   *prometheus.Registry
	dispatcher notify.Dispatcher
	port       cache.Port
}

// WithLogger replaces the logger built from cfg.Server.Logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *containerOptions) { o.logger = logger }
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *containerOptions) { o.registry = reg }
}

// WithDispatcher replaces the dispatcher selected by cfg.Notify.Backend.
func WithDispatcher(d notify.Dispatcher) Option {
	return func(o *containerOptions) { o.dispatcher = d }
}

// WithCachePort replaces the port selected by cfg.Cache.Backend.
func WithCachePort(port cache.Port) Option {
	return func(o *containerOptions) { o.port = port }
}

// DefaultConfig returns the configuration used when no file or environment
// override applies. Programs outside this module start from it.
func DefaultConfig() config.Config {
	return config.DefaultConfig()
}

// NewContainer builds every component from cfg and migrates the database.
// A redis backend that cannot be reached falls back to the in-process memory
// cache; the store stays the source of truth either way.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{config: cfg}

	c.logger = o.logger
	if c.logger == nil {
		logger, err := logging.New(cfg.Server.Logging)
		if err != nil {
			return nil, err
		}
		c.logger = logger
	}
	c.recorder = metrics.NewRecorder(o.registry)

	c.port = o.port
	if c.port == nil {
		c.port = c.openCachePort(cfg.CacheSettings())
	}
	c.aside = cache.NewAside(c.port,
		cache.WithPolicy(cfg.CachePolicy()),
		cache.WithLogger(c.logger),
		cache.WithObserver(c.recorder),
	)

	db, err := store.Open(cfg.StoreSettings())
	if err != nil {
		c.Close(ctx)
		return nil, err
	}
	c.store = store.New(db, store.WithEntityCache(c.aside))
	c.closers = append(c.closers, c.store.Close)
	if err := store.Migrate(ctx, db); err != nil {
		c.Close(ctx)
		return nil, err
	}

	dispatcher := o.dispatcher
	if dispatcher == nil {
		dispatcher, err = c.openDispatcher(cfg.Notify)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
	}
	c.notifier = notify.NewAsync(dispatcher, c.logger, 0)

	serviceOpts := []service.Option{
		service.WithLogger(c.logger),
		service.WithNotifier(c.notifier),
	}
	c.products = service.NewProducts(c.store, c.aside, serviceOpts...)
	c.customers = service.NewCustomers(c.store, c.aside, serviceOpts...)
	c.carts = service.NewCarts(c.store, c.aside, cfg.Catalog.IncentiveID(), serviceOpts...)
	c.statistics = service.NewStatistics(c.store, c.aside, serviceOpts...)

	c.handler = httpapi.NewRouter(httpapi.NewHandler(httpapi.Services{
		Products:   c.products,
		Customers:  c.customers,
		Carts:      c.carts,
		Statistics: c.statistics,
	},
		httpapi.WithLogger(c.logger),
		httpapi.WithRecorder(c.recorder),
		httpapi.WithHealthCheck(c.store.Ping),
	))

	return c, nil
}

func (c *Container) openCachePort(settings cache.Config) cache.Port {
	port, err := cache.NewPort(settings)
	if err == nil {
		if closer, ok := port.(interface{ Close() }); ok {
			c.closers = append(c.closers, func() error { closer.Close(); return nil })
		}
		return port
	}
	c.logger.Warn("cache backend unavailable, using in-process memory cache",
		slog.String("backend", settings.Backend),
		slog.Any("error", err),
	)
	fallback := settings
	fallback.Backend = cache.BackendMemory
	port, _ = cache.NewPort(fallback)
	return port
}

func (c *Container) openDispatcher(cfg config.NotifyConfig) (notify.Dispatcher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "kafka":
		d, err := notify.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, fmt.Errorf("di: kafka dispatcher: %w", err)
		}
		c.closers = append(c.closers, d.Close)
		return d, nil
	default:
		return notify.NewLogDispatcher(c.logger), nil
	}
}

// Close stops the notifier, waits for pending notifications, then releases
// resources in reverse order of acquisition.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.notifier != nil {
		if err := c.notifier.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) Config() config.Config         { return c.config }
func (c *Container) Logger() *slog.Logger          { return c.logger }
func (c *Container) Recorder() *metrics.Recorder   { return c.recorder }
func (c *Container) CachePort() cache.Port         { return c.port }
func (c *Container) Aside() *cache.Aside           { return c.aside }
func (c *Container) Store() *store.Store           { return c.store }
func (c *Container) Products() *service.Products   { return c.products }
func (c *Container) Customers() *service.Customers { return c.customers }
func (c *Container) Carts() *service.Carts         { return c.carts }
func (c *Container) Statistics() *service.Statistics {
	return c.statistics
}

// Handler returns the HTTP router.
func (c *Container) Handler() http.Handler { return c.handler }
