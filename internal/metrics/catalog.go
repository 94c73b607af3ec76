package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics records remote catalog traffic.
type CatalogMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	retries     prometheus.Counter
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_requests_total",
		Help:      "Catalog HTTP requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_request_duration_seconds",
		Help:      "Duration of catalog HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_retries_total",
		Help:      "Catalog requests retried after a retryable failure.",
	})
	hits := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_hits_total",
		Help:      "Catalog responses served from the cache.",
	})
	misses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_misses_total",
		Help:      "Catalog responses not found in the cache.",
	})
	reg.MustRegister(requests, duration, retries, hits, misses)
	return &CatalogMetrics{
		requests:    requests,
		duration:    duration,
		retries:     retries,
		cacheHits:   hits,
		cacheMisses: misses,
	}
}

// ObserveRequest records one completed request.
func (c *CatalogMetrics) ObserveRequest(endpoint, outcome string, d time.Duration) {
	if c == nil || c.requests == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	c.requests.WithLabelValues(endpoint, normalizeLabel(outcome)).Inc()
	c.duration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// IncRetry counts a retried request.
func (c *CatalogMetrics) IncRetry() {
	if c == nil || c.retries == nil {
		return
	}
	c.retries.Inc()
}

// IncCacheHit counts a cache hit.
func (c *CatalogMetrics) IncCacheHit() {
	if c == nil || c.cacheHits == nil {
		return
	}
	c.cacheHits.Inc()
}

// IncCacheMiss counts a cache miss.
func (c *CatalogMetrics) IncCacheMiss() {
	if c == nil || c.cacheMisses == nil {
		return
	}
	c.cacheMisses.Inc()
}
