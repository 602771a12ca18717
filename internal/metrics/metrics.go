// Package metrics exposes Prometheus collectors for the claim workflow,
// the classifier and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/lostfound/pkg/middleware"
)

const namespace = "lostfound"

// Recorder is the instrumentation surface consumed by domain systems.
type Recorder interface {
	ItemCreated(kind string)
	ClaimFiled()
	ClaimResolved(decision string)
	Classification(outcome string, d time.Duration)
	NotificationEmitted(kind string)
	NotificationFailed()
}

// Collector implements Recorder on a Prometheus registry.
type Collector struct {
	itemsCreated       *prometheus.CounterVec
	claimsFiled        prometheus.Counter
	claimsResolved     *prometheus.CounterVec
	classifications    *prometheus.CounterVec
	classifyLatency    prometheus.Histogram
	notifications      *prometheus.CounterVec
	notificationErrors prometheus.Counter
	requests           *prometheus.CounterVec
	requestLatency     prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		itemsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Items reported, by kind.",
		}, []string{"kind"}),
		claimsFiled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_filed_total",
			Help:      "Claims filed against found items.",
		}),
		claimsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_resolved_total",
			Help:      "Claims resolved, by decision.",
		}, []string{"decision"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classifier calls, by outcome.",
		}, []string{"outcome"}),
		classifyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Classifier call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "Notifications created, by type.",
		}, []string{"type"}),
		notificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be created after a resolution committed.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests, by method and status code.",
		}, []string{"method", "code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.itemsCreated,
		c.claimsFiled,
		c.claimsResolved,
		c.classifications,
		c.classifyLatency,
		c.notifications,
		c.notificationErrors,
		c.requests,
		c.requestLatency,
	)

	return c
}

func (c *Collector) ItemCreated(kind string) {
	c.itemsCreated.WithLabelValues(kind).Inc()
}

func (c *Collector) ClaimFiled() {
	c.claimsFiled.Inc()
}

func (c *Collector) ClaimResolved(decision string) {
	c.claimsResolved.WithLabelValues(decision).Inc()
}

func (c *Collector) Classification(outcome string, d time.Duration) {
	c.classifications.WithLabelValues(outcome).Inc()
	c.classifyLatency.Observe(d.Seconds())
}

func (c *Collector) NotificationEmitted(kind string) {
	c.notifications.WithLabelValues(kind).Inc()
}

func (c *Collector) NotificationFailed() {
	c.notificationErrors.Inc()
}

// Middleware counts requests and observes their latency.
func (c *Collector) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := middleware.NewStatusWriter(w)
			next.ServeHTTP(sw, r)
			c.requests.WithLabelValues(r.Method, strconv.Itoa(sw.Status)).Inc()
			c.requestLatency.Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Discard is a Recorder that records nothing.
var Discard Recorder = discard{}

type discard struct{}

func (discard) ItemCreated(string)                   {}
func (discard) ClaimFiled()                          {}
func (discard) ClaimResolved(string)                 {}
func (discard) Classification(string, time.Duration) {}
func (discard) NotificationEmitted(string)           {}
func (discard) NotificationFailed()                  {}
