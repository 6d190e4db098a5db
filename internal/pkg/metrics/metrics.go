package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unirenta",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "unirenta",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "unirenta",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Map metrics
	MarkersRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unirenta",
		Subsystem: "map",
		Name:      "markers_rendered_total",
		Help:      "Total markers placed on client maps",
	}, []string{"layer"})

	Recomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unirenta",
		Subsystem: "map",
		Name:      "recomputations_total",
		Help:      "Secondary layer recomputations by outcome",
	}, []string{"outcome"})

	ViewportTriggers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "unirenta",
		Subsystem: "map",
		Name:      "viewport_triggers_total",
		Help:      "Viewport-settle events received before debouncing",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "unirenta",
		Subsystem: "ws",
		Name:      "active_sessions",
		Help:      "Current number of open map sessions",
	})

	// Notices
	NoticesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unirenta",
		Subsystem: "notices",
		Name:      "classified_total",
		Help:      "Error payloads classified into notices",
	}, []string{"category", "severity"})

	// Backend client
	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "unirenta",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the rental backend",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	BackendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unirenta",
		Subsystem: "backend",
		Name:      "errors_total",
		Help:      "Failed calls to the rental backend",
	}, []string{"operation", "kind"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unirenta",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unirenta",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// fiber resolves the route pattern, keeping :id out of the labels
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
