package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderdemo"

// Metrics owns a private registry so that tests and services never share
// collectors.
type Metrics struct {
	Registry *prometheus.Registry

	UserClientCalls    *prometheus.CounterVec
	UserClientRetries  *prometheus.CounterVec
	UserClientDuration *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

func New(collectProcessMetrics bool) *Metrics {
	registry := prometheus.NewRegistry()
	if collectProcessMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		Registry: registry,
		UserClientCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "user_client",
			Name:      "calls_total",
			Help:      "Calls made through the bound user client by operation and outcome.",
		}, []string{"client", "operation", "outcome"}),
		UserClientRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "user_client",
			Name:      "retries_total",
			Help:      "Retries scheduled after a transient failure.",
		}, []string{"method"}),
		UserClientDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "user_client",
			Name:      "call_duration_seconds",
			Help:      "Latency of user client calls including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"client", "operation"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Handled HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of handled HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.UserClientCalls,
		m.UserClientRetries,
		m.UserClientDuration,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// ObserveUserClient records one user client call.
func (m *Metrics) ObserveUserClient(client, operation string, took time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UserClientCalls.WithLabelValues(client, operation, outcome).Inc()
	m.UserClientDuration.WithLabelValues(client, operation).Observe(took.Seconds())
}

// OnRetry matches client.Options.OnRetry.
func (m *Metrics) OnRetry(method, path string, err error, wait time.Duration) {
	m.UserClientRetries.WithLabelValues(method).Inc()
}

// Middleware counts requests by their route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))
}
