package harness

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/vango-dev/pebble/internal/catalog"
	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/pebble"
)

// Event is one observed step in a trace.
type Event struct {
	Seq   int    `json:"seq"`
	Op    string `json:"op"`
	Cell  string `json:"cell"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Scenario string   `json:"scenario"`
	Catalog  string   `json:"catalog"`
	Pass     bool     `json:"pass"`
	Trace    []Event  `json:"trace"`
	Failures []string `json:"failures,omitempty"`
}

// Err returns a P031 error listing every failed expectation, or nil.
func (r *Result) Err() error {
	if r.Pass {
		return nil
	}
	return errors.New("P031").
		WithDetail(strings.Join(r.Failures, "\n"))
}

func (r *Result) fail(seq int, format string, args ...any) {
	r.Pass = false
	r.Failures = append(r.Failures, fmt.Sprintf("step %d: ", seq)+fmt.Sprintf(format, args...))
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger  *slog.Logger
	metrics *pebble.Metrics
}

// WithLogger sets the logger for the run's boundary. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics records the run's cell activity.
func WithMetrics(m *pebble.Metrics) Option {
	return func(c *runConfig) {
		c.metrics = m
	}
}

// Run executes s in a fresh root boundary over a fresh copy of its catalog.
//
// Failed expectations are reported in the Result; the returned error is
// reserved for scenarios that cannot run at all, such as an unknown catalog
// or cell.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	cfg := newRunConfig(opts)

	cat, err := catalog.Get(s.Catalog)
	if err != nil {
		return nil, err
	}

	b := pebble.NewRoot(
		pebble.WithLogger(cfg.logger),
		pebble.WithMetrics(cfg.metrics),
	)
	defer b.Dispose()

	return run(b, cat, s, cfg)
}

// RunOn executes s against an existing boundary using the definitions in
// cat. It is how the pebble command seeds a served boundary. cat.Name must
// match s.Catalog.
func RunOn(b *pebble.Boundary, cat *catalog.Catalog, s *Scenario, opts ...Option) (*Result, error) {
	if cat.Name != s.Catalog {
		return nil, errors.New("P030").
			WithDetail(fmt.Sprintf("Scenario %q targets catalog %q, not %q.", s.Name, s.Catalog, cat.Name))
	}
	return run(b, cat, s, newRunConfig(opts))
}

func newRunConfig(opts []Option) *runConfig {
	cfg := &runConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func run(b *pebble.Boundary, cat *catalog.Catalog, s *Scenario, cfg *runConfig) (*Result, error) {
	for i, step := range s.Steps {
		if _, ok := cat.Lookup(step.Cell()); !ok {
			return nil, errors.New("P032").
				WithCell(step.Cell()).
				WithDetail(fmt.Sprintf("Step %d names a cell that catalog %q does not define.", i+1, cat.Name)).
				WithSuggestion("Cells in " + cat.Name + ": " + strings.Join(cat.Names(), ", "))
		}
	}

	logger := cfg.logger.With("component", "harness", "scenario", s.Name)
	result := &Result{
		Scenario: s.Name,
		Catalog:  cat.Name,
		Pass:     true,
		Trace:    make([]Event, 0, len(s.Steps)),
	}

	for i, step := range s.Steps {
		seq := i + 1
		cell, _ := cat.Lookup(step.Cell())

		var value any
		stepErr := b.Do(func(m *pebble.Manager) error {
			var err error
			value, err = runStep(m, cell, step)
			return err
		})

		event := Event{Seq: seq, Op: step.Op(), Cell: cell.Name()}
		if stepErr != nil {
			event.Error = errors.CodeOf(stepErr)
		} else {
			event.Value = normalize(value)
		}
		result.Trace = append(result.Trace, event)
		logger.Debug("scenario step", "seq", seq, "op", event.Op, "cell", event.Cell, "error", event.Error)

		check(result, seq, step, event, stepErr)
	}

	logger.Info("scenario finished", "steps", len(s.Steps), "pass", result.Pass)
	return result, nil
}

func runStep(m *pebble.Manager, cell pebble.Cell, step Step) (any, error) {
	switch step.Op() {
	case OpGet:
		return pebble.TryGet(m, cell)

	case OpSet:
		data, err := json.Marshal(step.Action)
		if err != nil {
			return nil, errors.New("P030").WithCell(cell.Name()).Wrap(err)
		}
		action, err := pebble.DecodeAction(cell, data)
		if err != nil {
			return nil, err
		}
		return pebble.TrySet(m, cell, action)

	default:
		if cell.Kind() != pebble.KindPebble {
			return nil, errors.New("P030").
				WithCell(cell.Name()).
				WithDetail("update applies only to plain cells.")
		}
		current, err := pebble.TryGet(m, cell)
		if err != nil {
			return nil, err
		}
		n, ok := normalize(current).(float64)
		if !ok {
			return nil, errors.New("P030").
				WithCell(cell.Name()).
				WithDetail(fmt.Sprintf("update needs a numeric cell; the value is %T.", current))
		}
		data, _ := json.Marshal(n + step.Delta)
		action, err := pebble.DecodeAction(cell, data)
		if err != nil {
			return nil, err
		}
		return pebble.TrySet(m, cell, action)
	}
}

func check(r *Result, seq int, step Step, event Event, err error) {
	switch {
	case step.Error != "" && err == nil:
		r.fail(seq, "%s %s: want error %s, got none", event.Op, event.Cell, step.Error)
		return
	case step.Error != "" && event.Error != step.Error:
		r.fail(seq, "%s %s: want error %s, got %v", event.Op, event.Cell, step.Error, err)
		return
	case step.Error == "" && err != nil:
		r.fail(seq, "%s %s: unexpected error: %v", event.Op, event.Cell, err)
		return
	}

	if err == nil && step.HasExpect() {
		want := normalize(step.Expect)
		if !reflect.DeepEqual(want, event.Value) {
			r.fail(seq, "%s %s: want %s, got %s", event.Op, event.Cell, render(want), render(event.Value))
		}
	}
}

// normalize maps v to its JSON form so that values from YAML and values from
// cells compare equal when they encode the same.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return out
}

func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
