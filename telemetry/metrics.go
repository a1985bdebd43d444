package telemetry

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MetricsCollector records operation durations in a Prometheus histogram.
// Unlike TimingCollector it keeps no tree and is safe to share between requests.
type MetricsCollector struct {
	durations *prometheus.HistogramVec
}

// NewMetricsCollector creates a collector and registers its histogram with reg.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "compta",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ledger operations.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"operation"})
	reg.MustRegister(durations)
	return &MetricsCollector{durations: durations}
}

func (c *MetricsCollector) Start(name string) Timer {
	return &metricsTimer{collector: c, name: operationName(name), start: time.Now()}
}

// Report writes one line per operation with its observation count and total time.
func (c *MetricsCollector) Report(w io.Writer) {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		c.durations.Collect(ch)
		close(ch)
	}()
	for metric := range ch {
		var m dto.Metric
		if err := metric.Write(&m); err != nil {
			continue
		}
		op := ""
		for _, l := range m.GetLabel() {
			if l.GetName() == "operation" {
				op = l.GetValue()
			}
		}
		h := m.GetHistogram()
		sum := time.Duration(h.GetSampleSum() * float64(time.Second))
		_, _ = fmt.Fprintf(w, "%s: %d calls, %s\n", op, h.GetSampleCount(), formatDuration(sum))
	}
}

type metricsTimer struct {
	collector *MetricsCollector
	name      string
	start     time.Time
}

func (t *metricsTimer) End() {
	t.collector.durations.WithLabelValues(t.name).Observe(time.Since(t.start).Seconds())
}

func (t *metricsTimer) Child(name string) Timer {
	return t.collector.Start(name)
}

// operationName drops the parenthesized detail of a timer name so that
// labels keep a bounded cardinality: "ledger.statements (20 entries)" becomes
// "ledger.statements".
func operationName(name string) string {
	if i := strings.Index(name, " ("); i >= 0 {
		return name[:i]
	}
	return name
}
