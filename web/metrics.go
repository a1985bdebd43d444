package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robinvdvleuten/compta/telemetry"
)

// serverMetrics holds the collectors of one server. Each server owns its
// registry so that several servers can live in one process.
type serverMetrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	entries   prometheus.Gauge
	sseClient prometheus.Gauge

	// operations records the ledger timers started under a request.
	operations *telemetry.MetricsCollector
}

func newServerMetrics() *serverMetrics {
	reg := prometheus.NewRegistry()
	m := &serverMetrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compta",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by operation and status code.",
		}, []string{"operation", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "compta",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "compta",
			Name:      "entries",
			Help:      "Number of entries in the ledger.",
		}),
		sseClient: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "compta",
			Subsystem: "http",
			Name:      "event_clients",
			Help:      "Connected server-sent event clients.",
		}),
	}
	reg.MustRegister(
		m.requests,
		m.latency,
		m.entries,
		m.sseClient,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.operations = telemetry.NewMetricsCollector(reg)
	return m
}

// handler serves the registry in the Prometheus exposition format.
func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// instrument records the request count and latency of an operation.
func (m *serverMetrics) instrument(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
