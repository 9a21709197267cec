// Package metrics provides Prometheus metric collection and exposition.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metric collection interface used by the HTTP layer and
// the service layer.
type Recorder interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordLogin(method string)
	RecordOrderPlaced(totalPrice float64)
	RecordCheckoutRejected(reason string)
}

// Collector is the Prometheus-backed Recorder implementation.
type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	logins           *prometheus.CounterVec
	ordersPlaced     prometheus.Counter
	orderValue       prometheus.Histogram
	checkoutRejected *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shoponline_http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shoponline_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shoponline_logins_total",
			Help: "Successful logins by method (oauth or password).",
		}, []string{"method"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shoponline_orders_placed_total",
			Help: "Orders placed.",
		}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shoponline_order_value",
			Help:    "Order totals at checkout.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		checkoutRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shoponline_checkout_rejected_total",
			Help: "Checkout attempts rejected, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.logins,
		c.ordersPlaced,
		c.orderValue,
		c.checkoutRejected,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordLogin(method string) {
	c.logins.WithLabelValues(method).Inc()
}

func (c *Collector) RecordOrderPlaced(totalPrice float64) {
	c.ordersPlaced.Inc()
	c.orderValue.Observe(totalPrice)
}

func (c *Collector) RecordCheckoutRejected(reason string) {
	c.checkoutRejected.WithLabelValues(reason).Inc()
}

// NoopRecorder discards all metrics. Used in tests.
type NoopRecorder struct{}

func (NoopRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}

func (NoopRecorder) RecordLogin(string) {}

func (NoopRecorder) RecordOrderPlaced(float64) {}

func (NoopRecorder) RecordCheckoutRejected(string) {}

// Handler returns the Prometheus scrape handler for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
