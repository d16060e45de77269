package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const localDegradedKind = "degraded_kind"

// metrics are kept on a per-server registry so tests can build many servers.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	sessions *prometheus.CounterVec
	degraded *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studypulse_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studypulse_http_request_duration_seconds",
				Help:    "Time spent serving HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		sessions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studypulse_sessions_total",
				Help: "Study sessions accepted, by session type and whether the store was written",
			},
			[]string{"session_type", "result"},
		),
		degraded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studypulse_degraded_reads_total",
				Help: "Reads answered with default values, by route and store error kind",
			},
			[]string{"route", "kind"},
		),
	}
}

// middleware counts every request under its route pattern, not its raw path.
func (m *metrics) middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		route := c.Route().Path
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		if kind, ok := c.Locals(localDegradedKind).(string); ok {
			m.degraded.WithLabelValues(route, kind).Inc()
		}
		return err
	}
}

func (m *metrics) handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
