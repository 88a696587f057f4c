// Package metrics holds the Prometheus collectors for profile lookups.
//
// Collectors are registered on a caller-supplied registry instead of the
// global default one, so tests get a clean registry each time. All methods
// are safe on a nil *Metrics, which lets components run without metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devprofile"

// Lookup outcomes.
const (
	OutcomeOK                  = "ok"
	OutcomeEmptyUsername       = "empty_username"
	OutcomeUserNotFound        = "user_not_found"
	OutcomeCaseMismatch        = "case_mismatch"
	OutcomeProviderUnavailable = "provider_unavailable"
	OutcomeCancelled           = "cancelled"
	OutcomeError               = "error"
)

// README fetch results.
const (
	ReadmeOK      = "ok"
	ReadmeMissing = "missing"
	ReadmeFailed  = "failed"
)

// Metrics is the set of collectors exported on /metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
	readmes        *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Profile lookups by outcome.",
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Time to aggregate one profile, including README fan-out.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		readmes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readme_fetches_total",
			Help:      "README fetches by result.",
		}, []string{"result"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_cache_requests_total",
			Help:      "Profile cache lookups by result (hit or miss).",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(
		m.lookups,
		m.lookupDuration,
		m.readmes,
		m.cacheHits,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveLookup records one finished lookup.
func (m *Metrics) ObserveLookup(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupDuration.Observe(d.Seconds())
}

// ObserveReadme records one README fetch.
func (m *Metrics) ObserveReadme(result string) {
	if m == nil {
		return
	}
	m.readmes.WithLabelValues(result).Inc()
}

// ObserveCache records a profile cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheHits.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
