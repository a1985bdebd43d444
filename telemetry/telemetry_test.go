package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestNoOpCollector(t *testing.T) {
	collector := noOpCollector{}

	timer := collector.Start("test")
	timer.Child("child").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	if buf.Len() != 0 {
		t.Errorf("no-op collector should produce no output, got: %s", buf.String())
	}
}

func TestFromContextReturnsNoOpWhenMissing(t *testing.T) {
	collector := FromContext(context.Background())
	if collector == nil {
		t.Fatal("FromContext should never return nil")
	}
	if _, ok := collector.(noOpCollector); !ok {
		t.Errorf("FromContext should return noOpCollector when none present, got: %T", collector)
	}
}

func TestStartTimerUsesContextCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	StartTimer(ctx, "compta report").End()

	var buf bytes.Buffer
	collector.Report(&buf)
	if !strings.Contains(buf.String(), "compta report") {
		t.Errorf("report should contain the timer name, got: %s", buf.String())
	}
}

func TestTimingCollectorNesting(t *testing.T) {
	collector := NewTimingCollector()
	collector.now = fakeClock(time.Millisecond)

	root := collector.Start("compta report")
	stmt := collector.Start("ledger.statements (3 entries)")
	stmt.Child("ledger.income_statement").End()
	stmt.Child("ledger.cashflow").End()
	stmt.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	out := buf.String()

	for _, want := range []string{
		"compta report: ",
		"└─ ledger.statements (3 entries): ",
		"   ├─ ledger.income_statement: 1ms",
		"   └─ ledger.cashflow: 1ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report should contain %q, got:\n%s", want, out)
		}
	}
}

func TestTimingCollectorSiblingRoots(t *testing.T) {
	collector := NewTimingCollector()

	collector.Start("first").End()
	collector.Start("second").End()

	var buf bytes.Buffer
	collector.Report(&buf)
	out := buf.String()

	if !strings.HasPrefix(out, "first: ") || !strings.Contains(out, "\nsecond: ") {
		t.Errorf("closed timers should produce sibling roots, got:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Millisecond, "5ms"},
		{999 * time.Millisecond, "999ms"},
		{1500 * time.Millisecond, "1.50s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestMetricsCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewMetricsCollector(reg)
	ctx := WithCollector(context.Background(), collector)

	timer := StartTimer(ctx, "ledger.statements (20 entries)")
	timer.Child("ledger.cashflow").End()
	timer.End()
	StartTimer(ctx, "ledger.statements (21 entries)").End()

	if got := testutil.CollectAndCount(collector.durations); got != 2 {
		t.Errorf("expected 2 label sets, got %d", got)
	}

	var buf bytes.Buffer
	collector.Report(&buf)
	if !strings.Contains(buf.String(), "ledger.statements: 2 calls") {
		t.Errorf("report should aggregate by operation, got:\n%s", buf.String())
	}
}

func TestOperationName(t *testing.T) {
	if got := operationName("ledger.statements (20 entries)"); got != "ledger.statements" {
		t.Errorf("got %q", got)
	}
	if got := operationName("ledger.cashflow"); got != "ledger.cashflow" {
		t.Errorf("got %q", got)
	}
}
