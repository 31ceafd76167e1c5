package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-storefront/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder publishes Prometheus metrics for cache and HTTP activity. It
// satisfies cache.Observer.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	cacheLookups       *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec
}

var _ cache.Observer = (*Recorder)(nil)

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil a dedicated
// registry is created so multiple recorders can coexist without conflicting with
// the global default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served by the API.",
	}, []string{"route", "method", "status_code"})

	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for API requests.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route", "method"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by keyspace family and outcome.",
	}, []string{"family", "result"})

	cacheInvalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Cache key deletions issued after writes.",
	}, []string{"family", "result"})

	reg.MustRegister(httpRequests, httpLatency, cacheLookups, cacheInvalidations)

	return &Recorder{
		gatherer:           reg,
		handler:            promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		httpRequests:       httpRequests,
		httpLatency:        httpLatency,
		cacheLookups:       cacheLookups,
		cacheInvalidations: cacheInvalidations,
	}
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying Prometheus gatherer for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveHTTP records one completed request. route is the router pattern, not
// the raw path, to keep label cardinality bounded.
func (r *Recorder) ObserveHTTP(route, method string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	routeLabel := normalizeLabel(route)
	methodLabel := normalizeLabel(method)
	statusLabel := strconv.Itoa(statusCode)
	if statusCode <= 0 {
		statusLabel = "unknown"
	}
	r.httpRequests.WithLabelValues(routeLabel, methodLabel, statusLabel).Inc()
	r.httpLatency.WithLabelValues(routeLabel, methodLabel).Observe(duration.Seconds())
}

// CacheLookup counts a read-through lookup.
func (r *Recorder) CacheLookup(key string, outcome cache.Outcome) {
	if r == nil {
		return
	}
	result := string(outcome)
	if result == "" {
		result = string(cache.OutcomeMiss)
	}
	r.cacheLookups.WithLabelValues(cache.Family(key), result).Inc()
}

// CacheInvalidate counts a key deletion.
func (r *Recorder) CacheInvalidate(key string, err error) {
	if r == nil {
		return
	}
	result := "deleted"
	if err != nil {
		result = "error"
	}
	r.cacheInvalidations.WithLabelValues(cache.Family(key), result).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
