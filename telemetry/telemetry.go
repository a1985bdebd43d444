// Package telemetry times ledger operations.
//
// Collectors travel in the context so that instrumented code does not need to
// know whether anyone is listening. The CLI installs a TimingCollector when
// --telemetry is given and prints the resulting tree; the HTTP server installs
// a MetricsCollector that feeds a Prometheus histogram.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "compta report")
//	st, err := l.Statements(ctx)
//	timer.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector collects timings of named operations.
type Collector interface {
	// Start begins timing an operation. End must be called on the returned Timer.
	Start(name string) Timer

	// Report writes the collected data to w. The format is implementation-specific.
	Report(w io.Writer)
}

// Timer tracks a single operation's timing.
type Timer interface {
	// End stops the timer and records the duration.
	End()

	// Child creates a timer nested under this one.
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context.
// If no collector is present, returns a collector that does nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer on the collector carried by ctx.
func StartTimer(ctx context.Context, name string) Timer {
	return FromContext(ctx).Start(name)
}
