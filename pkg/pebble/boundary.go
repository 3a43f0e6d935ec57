package pebble

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/reactive"
)

// boundaryKey is the owner value key under which a Boundary publishes its
// Manager.
type boundaryKey struct{}

// Boundary is the ownership scope of a Manager. Every live instance the
// Manager constructs belongs to the boundary's owner and is released when
// the boundary is disposed.
type Boundary struct {
	owner   *reactive.Owner
	manager *Manager

	// mu serializes Do.
	mu sync.Mutex
}

// BoundaryOption configures a Boundary.
type BoundaryOption func(*boundaryConfig)

type boundaryConfig struct {
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	ctx     context.Context
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) BoundaryOption {
	return func(c *boundaryConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Default: none.
func WithMetrics(m *Metrics) BoundaryOption {
	return func(c *boundaryConfig) {
		c.metrics = m
	}
}

// WithTracer sets the tracer for construction spans.
// Default: otel.Tracer("pebble").
func WithTracer(t trace.Tracer) BoundaryOption {
	return func(c *boundaryConfig) {
		c.tracer = t
	}
}

// WithContext sets the parent context of construction spans.
func WithContext(ctx context.Context) BoundaryOption {
	return func(c *boundaryConfig) {
		c.ctx = ctx
	}
}

// NewBoundary creates a boundary on owner and publishes its Manager to owner
// and its descendants. It fails with ErrMissingOwner when owner is nil or
// disposed.
//
// Disposing the boundary disposes owner.
func NewBoundary(owner *reactive.Owner, opts ...BoundaryOption) (*Boundary, error) {
	if owner == nil || owner.IsDisposed() {
		return nil, errors.New("P001")
	}

	cfg := &boundaryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(defaultTracerName)
	}
	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}

	m := newManager(owner, cfg)
	owner.SetValue(boundaryKey{}, m)
	return &Boundary{owner: owner, manager: m}, nil
}

// Provide creates a boundary on a new child owner of parent.
// It fails with ErrMissingOwner when parent is nil or disposed.
func Provide(parent *reactive.Owner, opts ...BoundaryOption) (*Boundary, error) {
	if parent == nil || parent.IsDisposed() {
		return nil, errors.New("P001")
	}
	return NewBoundary(reactive.NewOwner(parent), opts...)
}

// NewRoot creates a boundary on a new root owner.
func NewRoot(opts ...BoundaryOption) *Boundary {
	b, _ := NewBoundary(reactive.NewOwner(nil), opts...)
	return b
}

// Owner returns the boundary's owner.
func (b *Boundary) Owner() *reactive.Owner {
	return b.owner
}

// Manager returns the boundary's cell registry.
func (b *Boundary) Manager() *Manager {
	return b.manager
}

// Dispose disposes the owner and with it every live instance.
func (b *Boundary) Dispose() {
	b.owner.Dispose()
}

// Do runs fn with the boundary's owner current, then runs any effects the
// writes in fn scheduled. Calls are serialized, so Do is the way to use a
// boundary from more than one goroutine. Contract violations in fn are
// returned as errors.
func (b *Boundary) Do(fn func(m *Manager) error) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.owner.IsDisposed() {
		return errors.New("P002").WithDetail("the boundary has been disposed")
	}

	defer catch(&err)
	reactive.WithOwner(b.owner, func() {
		err = fn(b.manager)
	})
	b.owner.RunPendingEffects()
	return err
}

// FromOwner returns the Manager of the nearest boundary at or above owner.
// It fails with ErrMissingBoundary when there is none or it was disposed.
func FromOwner(owner *reactive.Owner) (*Manager, error) {
	if owner == nil {
		return nil, errors.New("P002")
	}
	m, ok := owner.GetValue(boundaryKey{}).(*Manager)
	if !ok {
		return nil, errors.New("P002")
	}
	if m.owner.IsDisposed() {
		return nil, errors.New("P002").WithDetail("the boundary has been disposed")
	}
	return m, nil
}

// Current returns the Manager of the nearest boundary around the current
// owner.
func Current() (*Manager, error) {
	return FromOwner(reactive.CurrentOwner())
}

// UsePebble returns the live signal of cell in the current boundary.
func UsePebble[T any](cell *Pebble[T]) (s *reactive.Signal[T], err error) {
	m, err := Current()
	if err != nil {
		return nil, err
	}
	defer catch(&err)
	return cell.signal(m), nil
}

// UseComputed returns the live memo of cell in the current boundary.
func UseComputed[T any](cell *Computed[T]) (memo *reactive.Memo[T], err error) {
	m, err := Current()
	if err != nil {
		return nil, err
	}
	defer catch(&err)
	return cell.memo(m), nil
}

// UseProxy returns the live proxy of cell in the current boundary.
func UseProxy[T, A, R any](cell *Proxy[T, A, R]) (p *ProxySignal[T, A, R], err error) {
	m, err := Current()
	if err != nil {
		return nil, err
	}
	defer catch(&err)
	return cell.signal(m), nil
}

// UseCustom returns the live custom signal of cell in the current boundary.
func UseCustom[T, A, R any](cell *Custom[T, A, R]) (c *CustomSignal[T, A, R], err error) {
	m, err := Current()
	if err != nil {
		return nil, err
	}
	defer catch(&err)
	return cell.signal(m), nil
}

// Use returns an untyped accessor for cell in the current boundary,
// constructing its instance if needed.
func Use(cell Cell) (a Accessor, err error) {
	m, err := Current()
	if err != nil {
		return Accessor{}, err
	}
	defer catch(&err)
	m.instance(cell)
	return Accessor{cell: cell, manager: m}, nil
}

// Accessor is an untyped handle on a live cell.
type Accessor struct {
	cell    Cell
	manager *Manager
}

// Cell returns the definition.
func (a Accessor) Cell() Cell {
	return a.cell
}

// Manager returns the manager holding the instance.
func (a Accessor) Manager() *Manager {
	return a.manager
}

// ReadOnly reports whether writes are rejected.
func (a Accessor) ReadOnly() bool {
	return !a.cell.Kind().Writable()
}

// Get returns the current value, tracked.
func (a Accessor) Get() any {
	return a.manager.Get(a.cell)
}

// Set writes action. It returns ErrReadOnly for derived cells.
func (a Accessor) Set(action any) (any, error) {
	return TrySet(a.manager, a.cell, action)
}
