package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the gateway's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	corsRejections prometheus.Counter
	corsPreflights prometheus.Counter
	authDecisions  *prometheus.CounterVec
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	register := func(c prometheus.Collector) { reg.MustRegister(c) }

	c := &Collector{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corsgate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corsgate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "route"},
		),
		// Unlabeled: the Origin header is client-controlled.
		corsRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "corsgate_cors_rejections_total",
				Help: "Cross-origin requests refused because of their origin",
			},
		),
		corsPreflights: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "corsgate_cors_preflights_total",
				Help: "CORS preflight requests answered",
			},
		),
		authDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corsgate_auth_decisions_total",
				Help: "Token verification outcomes",
			},
			[]string{"result"},
		),
	}

	register(c.httpRequests)
	register(c.httpDuration)
	register(c.corsRejections)
	register(c.corsPreflights)
	register(c.authDecisions)
	register(collectors.NewGoCollector())
	register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return c
}

// RecordRequest records a finished HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordCORSRejection counts a refused origin.
func (c *Collector) RecordCORSRejection() {
	c.corsRejections.Inc()
}

// RecordPreflight counts an answered preflight.
func (c *Collector) RecordPreflight() {
	c.corsPreflights.Inc()
}

// RecordAuthDecision counts a verification result: allowed, denied or error.
func (c *Collector) RecordAuthDecision(result string) {
	c.authDecisions.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
