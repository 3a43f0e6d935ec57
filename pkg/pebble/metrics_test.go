package pebble

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() != label || lp.GetValue() != value {
					continue
				}
				if c := metric.GetCounter(); c != nil {
					return c.GetValue()
				}
				return metric.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(reg))
	cells := newCounterCells(0)

	b := newTestBoundary(t, WithMetrics(metrics))
	m := b.Manager()

	Get(m, cells.title)
	Dispatch(m, cells.doubled, 2)
	Get(m, cells.doubled)
	TrySet(m, cells.title, "x")

	tests := []struct {
		name  string
		label string
		value string
		want  float64
	}{
		{"pebble_instances_created_total", "kind", "pebble", 1},
		{"pebble_instances_created_total", "kind", "computed", 1},
		{"pebble_instances_created_total", "kind", "proxy", 1},
		{"pebble_live_instances", "kind", "pebble", 1},
		{"pebble_writes_total", "kind", "proxy", 1},
		{"pebble_writes_total", "kind", "pebble", 1},
		{"pebble_contract_violations_total", "code", "P004", 1},
	}
	for _, tt := range tests {
		if got := gatherValue(t, reg, tt.name, tt.label, tt.value); got != tt.want {
			t.Errorf("%s{%s=%q} = %v, want %v", tt.name, tt.label, tt.value, got, tt.want)
		}
	}
	if got := gatherValue(t, reg, "pebble_reads_total", "kind", "pebble"); got < 2 {
		t.Errorf("pebble_reads_total{kind=pebble} = %v, want at least 2", got)
	}

	b.Dispose()
	for _, kind := range []string{"pebble", "computed", "proxy"} {
		if got := gatherValue(t, reg, "pebble_live_instances", "kind", kind); got != 0 {
			t.Errorf("pebble_live_instances{kind=%q} = %v after dispose, want 0", kind, got)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.created(KindPebble)
	m.read(KindPebble)
	m.write(KindPebble)
	m.violation("P004")
	m.released(KindPebble, 3)
}

// recordingTracer records the names and cell attributes of started spans.
type recordingTracer struct {
	trace.Tracer
	spans []string
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	for _, attr := range cfg.Attributes() {
		if attr.Key == attrCell {
			name += ":" + attr.Value.AsString()
		}
	}
	r.spans = append(r.spans, name)
	return r.Tracer.Start(ctx, name, opts...)
}

func TestTracing_ConstructSpans(t *testing.T) {
	tracer := &recordingTracer{Tracer: noop.NewTracerProvider().Tracer("test")}
	cells := newCounterCells(0)
	m := newTestBoundary(t, WithTracer(tracer)).Manager()

	Get(m, cells.title)
	Get(m, cells.title)

	want := []string{"pebble.construct:count-title", "pebble.construct:count"}
	if len(tracer.spans) != len(want) {
		t.Fatalf("spans = %v, want %v", tracer.spans, want)
	}
	for i := range want {
		if tracer.spans[i] != want[i] {
			t.Errorf("span %d = %q, want %q", i, tracer.spans[i], want[i])
		}
	}
}
