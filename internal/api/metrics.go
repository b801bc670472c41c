package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the server's Prometheus collectors. Each server gets its own
// registry so tests can build several side by side.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewMetrics creates and registers the HTTP and study collectors. pending,
// when non-nil, backs the sync_pending_writes gauge.
func NewMetrics(pending func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "study_outcomes_total",
				Help: "Recorded study outcomes by source and result",
			},
			[]string{"source", "result"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.outcomes)
	if pending != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "sync_pending_writes",
				Help: "Progress snapshots queued for the remote store",
			},
			func() float64 { return float64(pending()) },
		))
	}
	return m
}

// Registerer lets other components add collectors to the server registry.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordOutcome counts one pass or fail.
func (m *Metrics) RecordOutcome(source string, success bool) {
	result := "fail"
	if success {
		result = "pass"
	}
	m.outcomes.WithLabelValues(source, result).Inc()
}

// Middleware records request count and latency per route pattern, and logs
// each request at debug level.
func (m *Metrics) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			endpoint := routePattern(r)
			elapsed := time.Since(start)

			m.requests.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(r.Method, endpoint).Observe(elapsed.Seconds())

			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// routePattern keeps label cardinality bounded: book titles never appear
// as label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
