// Package httpapi exposes the storefront services over HTTP under /api/v1.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-storefront/internal/metrics"
	"github.com/goliatone/go-storefront/service"
)

// Services bundles the resources served by the API.
type Services struct {
	Products   *service.Products
	Customers  *service.Customers
	Carts      *service.Carts
	Statistics *service.Statistics
}

// Handler serves the REST resources.
type Handler struct {
	svc      Services
	logger   *slog.Logger
	recorder *metrics.Recorder
	health   func(context.Context) error
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRecorder publishes request metrics and mounts /metrics.
func WithRecorder(recorder *metrics.Recorder) Option {
	return func(h *Handler) { h.recorder = recorder }
}

// WithHealthCheck makes /healthz report check failures as 503.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(h *Handler) { h.health = check }
}

func NewHandler(svc Services, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(slog.String("component", "http"))
	return h
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.observeMiddleware)

	r.Get("/healthz", h.healthz)
	if h.recorder != nil {
		r.Handle("/metrics", h.recorder.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/statistics", h.allStatistics)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.replaceProduct)
			r.Patch("/{id}", h.patchProduct)
			r.Delete("/{id}", h.removeProduct)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.listCustomers)
			r.Post("/", h.createCustomer)
			r.Get("/statistics", h.allStatistics)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", h.replaceCustomer)
				r.Patch("/", h.patchCustomer)
				r.Delete("/", h.removeCustomer)
				r.Get("/statistics", h.customerStatistics)

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", h.showCart)
					r.Post("/", h.submitCart)
					r.Put("/{cartId}", h.updateCart)
					r.Patch("/{cartId}", h.updateCart)
					r.Delete("/{cartId}", h.removeCart)
				})
			})
		})
	})
	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
			respond(w, r, http.StatusServiceUnavailable, nil, "unavailable")
			return
		}
	}
	respond(w, r, http.StatusOK, nil, "ok")
}
