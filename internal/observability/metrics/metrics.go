package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics bundles the engine's Prometheus collectors.
type Metrics struct {
	ToggleTotal  *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		ToggleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odontix_module_toggles_total",
			Help: "Module toggle attempts by action and outcome.",
		}, []string{"action", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odontix_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "odontix_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	prometheus.MustRegister(m.ToggleTotal, m.HTTPRequests, m.HTTPDuration)
	return m
}

// ObserveToggle records one toggle attempt.
func (m *Metrics) ObserveToggle(action, outcome string) {
	if m == nil {
		return
	}
	m.ToggleTotal.WithLabelValues(action, outcome).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
