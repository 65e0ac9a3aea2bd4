// Package metrics collects and exposes Prometheus metrics for the cache,
// the user synchronization flows and the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records metrics on a Prometheus registry.
// It satisfies cache.Recorder and usecase.SyncRecorder.
type Collector struct {
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheFillsSkipped  prometheus.Counter
	cacheInvalidations prometheus.Counter
	syncs              *prometheus.CounterVec
	webhooksRejected   prometheus.Counter
	httpRequests       *prometheus.CounterVec
	httpLatency        *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "course_cache_hits_total",
			Help: "Memoized reads served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "course_cache_misses_total",
			Help: "Memoized reads that went to the repository.",
		}),
		cacheFillsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "course_cache_fills_skipped_total",
			Help: "Loaded values not stored because an invalidation ran during the load.",
		}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "course_cache_tag_invalidations_total",
			Help: "Cache tags invalidated.",
		}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "course_user_syncs_total",
			Help: "User synchronizations by flow and outcome.",
		}, []string{"flow", "outcome"}),
		webhooksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "course_webhooks_rejected_total",
			Help: "Lifecycle notifications rejected by signature verification.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "course_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "course_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.cacheFillsSkipped,
		c.cacheInvalidations,
		c.syncs,
		c.webhooksRejected,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) RecordCacheHit()         { c.cacheHits.Inc() }
func (c *Collector) RecordCacheMiss()        { c.cacheMisses.Inc() }
func (c *Collector) RecordCacheFillSkipped() { c.cacheFillsSkipped.Inc() }

// RecordCacheInvalidation adds the number of tags one invalidation evicted.
func (c *Collector) RecordCacheInvalidation(tags int) {
	c.cacheInvalidations.Add(float64(tags))
}

// RecordSync counts one synchronization attempt.
func (c *Collector) RecordSync(flow, outcome string) {
	c.syncs.WithLabelValues(flow, outcome).Inc()
}

// RecordWebhookRejected counts a notification that failed verification.
func (c *Collector) RecordWebhookRejected() {
	c.webhooksRejected.Inc()
}

// Middleware records request counts and latency per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequests.WithLabelValues(route, method, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
