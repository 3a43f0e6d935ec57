package harness

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/pebble/internal/catalog"
	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/pebble"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGoldenScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, s, WithLogger(quietLogger()))
			require.NoError(t, err)
			assert.True(t, result.Pass, "failures: %v", result.Failures)
			assert.NoError(t, result.Err())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		valid bool
	}{
		{
			name: "minimal",
			yaml: `
name: ok
description: d
catalog: counter
steps:
  - get: count
`,
			valid: true,
		},
		{
			name: "all step kinds",
			yaml: `
name: all-kinds
description: d
catalog: counter
steps:
  - get: count
    expect: 0
  - set: count
    action: 2
  - update: count
    delta: -1.5
    error: P005
`,
			valid: true,
		},
		{
			name:  "empty document",
			yaml:  "",
			valid: false,
		},
		{
			name: "missing catalog",
			yaml: `
name: x
description: d
steps:
  - get: count
`,
		},
		{
			name: "no steps",
			yaml: `
name: x
description: d
catalog: counter
steps: []
`,
		},
		{
			name: "two operations in one step",
			yaml: `
name: x
description: d
catalog: counter
steps:
  - get: count
    set: count
    action: 1
`,
		},
		{
			name: "set without action",
			yaml: `
name: x
description: d
catalog: counter
steps:
  - set: count
`,
		},
		{
			name: "non-numeric delta",
			yaml: `
name: x
description: d
catalog: counter
steps:
  - update: count
    delta: one
`,
		},
		{
			name: "bad error code",
			yaml: `
name: x
description: d
catalog: counter
steps:
  - get: count
    error: oops
`,
		},
		{
			name: "unknown top-level field",
			yaml: `
name: x
description: d
catalog: counter
setup: []
steps:
  - get: count
`,
		},
		{
			name: "bad name",
			yaml: `
name: Has Spaces
description: d
catalog: counter
steps:
  - get: count
`,
		},
		{
			name:  "not yaml",
			yaml:  "name: [unclosed",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.yaml))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, "P030", errors.CodeOf(err))
		})
	}
}

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: parse
description: d
catalog: counter
steps:
  - get: count
    expect: null
  - set: doubled
    action: 2
  - update: count
    delta: 3
`))
	require.NoError(t, err)
	require.Len(t, s.Steps, 3)

	assert.Equal(t, OpGet, s.Steps[0].Op())
	assert.True(t, s.Steps[0].HasExpect())
	assert.Equal(t, OpSet, s.Steps[1].Op())
	assert.Equal(t, "doubled", s.Steps[1].Cell())
	assert.False(t, s.Steps[1].HasExpect())
	assert.Equal(t, OpUpdate, s.Steps[2].Op())
	assert.Equal(t, 3.0, s.Steps[2].Delta)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		steps    []Step
		failures int
		trace    []Event
	}{
		{
			name:     "wrong value",
			steps:    []Step{{Get: "count", Expect: 1}},
			failures: 1,
			trace:    []Event{{Seq: 1, Op: OpGet, Cell: "count", Value: 0.0}},
		},
		{
			name:     "missing expected error",
			steps:    []Step{{Set: "count", Action: 1, Error: "P004"}},
			failures: 1,
			trace:    []Event{{Seq: 1, Op: OpSet, Cell: "count", Value: 1.0}},
		},
		{
			name:     "unexpected error",
			steps:    []Step{{Set: "count", Action: "one"}},
			failures: 1,
			trace:    []Event{{Seq: 1, Op: OpSet, Cell: "count", Error: "P005"}},
		},
		{
			name:     "wrong error",
			steps:    []Step{{Set: "count-title", Action: "x", Error: "P005"}},
			failures: 1,
			trace:    []Event{{Seq: 1, Op: OpSet, Cell: "count-title", Error: "P004"}},
		},
		{
			name:     "update on a derived cell",
			steps:    []Step{{Update: "count-title", Delta: 1}},
			failures: 1,
			trace:    []Event{{Seq: 1, Op: OpUpdate, Cell: "count-title", Error: "P030"}},
		},
		{
			name:     "update on a fraction",
			steps:    []Step{{Update: "count", Delta: 0.5, Error: "P005"}},
			failures: 0,
			trace:    []Event{{Seq: 1, Op: OpUpdate, Cell: "count", Error: "P005"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scenario{Name: "failures", Catalog: "counter", Steps: tt.steps}

			result, err := Run(s, WithLogger(quietLogger()))
			require.NoError(t, err)
			assert.Len(t, result.Failures, tt.failures)
			assert.Equal(t, tt.failures == 0, result.Pass)
			assert.Equal(t, tt.trace, result.Trace)

			if tt.failures > 0 {
				assert.Equal(t, "P031", errors.CodeOf(result.Err()))
			}
		})
	}
}

func TestRun_UnknownCatalogOrCell(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Catalog: "nope", Steps: []Step{{Get: "count"}}})
	assert.Equal(t, "P032", errors.CodeOf(err))

	_, err = Run(&Scenario{Name: "x", Catalog: "counter", Steps: []Step{{Get: "missing"}}},
		WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Equal(t, "P032", errors.CodeOf(err))
	assert.Equal(t, "missing", err.(*errors.PebbleError).Cell)
}

func TestRun_FreshStatePerRun(t *testing.T) {
	s := &Scenario{
		Name:    "fresh",
		Catalog: "counter",
		Steps:   []Step{{Set: "ticks", Action: 1, Expect: 1}},
	}

	for i := 0; i < 2; i++ {
		result, err := Run(s, WithLogger(quietLogger()))
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d: %v", i, result.Failures)
	}
}

func TestRun_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := pebble.NewMetrics(pebble.WithRegistry(reg))

	s := &Scenario{
		Name:    "metrics",
		Catalog: "counter",
		Steps:   []Step{{Get: "count-title"}, {Set: "count", Action: 2}},
	}
	_, err := Run(s, WithLogger(quietLogger()), WithMetrics(metrics))
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	created := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "pebble_instances_created_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			created[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"pebble": 1, "computed": 1}, created)
}

func TestMarshalTrace(t *testing.T) {
	data, err := MarshalTrace(&Result{
		Scenario: "s",
		Catalog:  "c",
		Trace:    []Event{{Seq: 1, Op: OpGet, Cell: "x", Value: "v"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{
  "scenario": "s",
  "catalog": "c",
  "trace": [
    {
      "seq": 1,
      "op": "get",
      "cell": "x",
      "value": "v"
    }
  ]
}
`, string(data))
}

func TestRunOn(t *testing.T) {
	cat, err := catalog.Get("counter")
	require.NoError(t, err)

	b := pebble.NewRoot(pebble.WithLogger(quietLogger()))
	t.Cleanup(b.Dispose)

	s := &Scenario{Name: "seed", Catalog: "counter", Steps: []Step{{Set: "count", Action: 4}}}
	result, err := RunOn(b, cat, s, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.True(t, result.Pass)

	count, _ := cat.Lookup("count")
	require.NoError(t, b.Do(func(m *pebble.Manager) error {
		assert.Equal(t, 4, m.Get(count))
		return nil
	}))

	_, err = RunOn(b, cat, &Scenario{Name: "other", Catalog: "todos"})
	assert.Equal(t, "P030", errors.CodeOf(err))
}
