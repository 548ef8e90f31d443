// Package metrics exposes Prometheus counters for the outbound API traffic of
// the Veritas clients.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the API clients report to.
type Recorder interface {
	RecordRequest(method, route string, status int, latency time.Duration)
	RecordRollback(op string)
	RecordEndpointFallback(route string)
	RecordSummaryMiss()
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	rollbacks   *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	summaryMiss prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "veritas_api_requests_total",
			Help: "Outbound backend requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veritas_api_request_seconds",
			Help:    "Latency of outbound backend requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "veritas_bookmark_rollbacks_total",
			Help: "Optimistic bookmark changes undone after a failed request.",
		}, []string{"op"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "veritas_recommend_endpoint_fallbacks_total",
			Help: "Recommendation endpoints skipped because they did not answer successfully.",
		}, []string{"route"}),
		summaryMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "veritas_summary_misses_total",
			Help: "Recommendation summaries left empty after a failed fetch.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.rollbacks, c.fallbacks, c.summaryMiss)
	return c
}

// RecordRequest counts a finished request. status is 0 for transport failures.
func (c *Collector) RecordRequest(method, route string, status int, latency time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(latency.Seconds())
}

func (c *Collector) RecordRollback(op string) {
	c.rollbacks.WithLabelValues(op).Inc()
}

func (c *Collector) RecordEndpointFallback(route string) {
	c.fallbacks.WithLabelValues(route).Inc()
}

func (c *Collector) RecordSummaryMiss() {
	c.summaryMiss.Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordRollback(string)                            {}
func (Nop) RecordEndpointFallback(string)                    {}
func (Nop) RecordSummaryMiss()                               {}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
