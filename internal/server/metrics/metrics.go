// Package metrics collects Prometheus metrics for the RemoteStore server and
// serves them together with a health probe.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	rateLimited    *prometheus.CounterVec
	sessionsPurged prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "movieshelf_rpc_requests_total",
			Help: "RemoteStore calls by method and status code.",
		}, []string{"method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "movieshelf_rpc_latency_seconds",
			Help:    "RemoteStore call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "movieshelf_rpc_rate_limited_total",
			Help: "Calls rejected by the per-identity rate limiter.",
		}, []string{"method"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "movieshelf_sessions_purged_total",
			Help: "Expired sessions removed by the purge loop.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.rateLimited, c.sessionsPurged)

	return c
}

func (c *Collector) ObserveRPC(method, code string, d time.Duration) {
	c.requests.WithLabelValues(method, code).Inc()
	c.latency.WithLabelValues(method).Observe(d.Seconds())
}

func (c *Collector) RecordRateLimited(method string) {
	c.rateLimited.WithLabelValues(method).Inc()
}

func (c *Collector) RecordSessionsPurged(n int64) {
	c.sessionsPurged.Add(float64(n))
}

// NewRouter serves /metrics from gatherer and /healthz, which reports 503
// while health returns an error.
func NewRouter(gatherer prometheus.Gatherer, health func(ctx context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := health(ctx); err != nil {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// RequestsFor exposes the request counter of one method and code.
func (c *Collector) RequestsFor(method, code string) prometheus.Counter {
	return c.requests.WithLabelValues(method, code)
}

// RateLimitedFor exposes the rate-limit counter of one method.
func (c *Collector) RateLimitedFor(method string) prometheus.Counter {
	return c.rateLimited.WithLabelValues(method)
}
