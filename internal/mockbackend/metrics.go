// internal/mockbackend/metrics.go
package mockbackend

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// OutcomeSuccess labels investigations that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels investigations that failed.
	OutcomeError = "error"
)

// Metrics holds the collectors of one server instance.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
}

// NewMetrics creates collectors on a private registry, so several servers can
// coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soko_mock",
				Name:      "http_requests_total",
				Help:      "HTTP requests handled, partitioned by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "soko_mock",
				Name:      "http_request_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soko_mock",
				Name:      "investigations_total",
				Help:      "Investigation runs, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "soko_mock",
				Name:      "investigation_seconds",
				Help:      "Investigation run latency in seconds.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.runsTotal,
		m.runDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the registry for the /metrics handler and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records every request. Unmatched routes share one label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveRun records an investigation run duration and outcome label.
func (m *Metrics) ObserveRun(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	m.runsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	m.runDuration.Observe(duration.Seconds())
}

// RunsCounter returns the run counter for outcome.
func (m *Metrics) RunsCounter(outcome string) prometheus.Counter {
	return m.runsTotal.WithLabelValues(outcome)
}
