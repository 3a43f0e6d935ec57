package pebble

import (
	"encoding/json"
	"reflect"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/reactive"
)

// Cell is a cell definition. Definitions are created by NewPebble,
// NewPebbleFunc, NewComputed, NewProxy and NewCustom; the interface cannot be
// implemented outside this package.
type Cell interface {
	// Name returns the cell identity, the key under which a Manager stores
	// its live instance.
	Name() string

	// Kind returns the cell variant.
	Kind() Kind

	// construct builds the live instance. The Manager calls it with its own
	// owner current and no active listener.
	construct(m *Manager) any

	// read returns the current value, tracking it for the active listener.
	read(m *Manager) any
}

// Readable is a cell whose value has type T.
type Readable[T any] interface {
	Cell
	get(m *Manager) T
}

// Writable is a cell accepting actions of type A and returning R from a
// write.
type Writable[A, R any] interface {
	Cell
	apply(m *Manager, action A) R
}

// writer is the untyped write path of writable kinds.
type writer interface {
	write(m *Manager, action any) any
	decodeAction(data []byte) (any, error)
}

// ============================================================================
// Pebble
// ============================================================================

// Pebble is a plain mutable cell. Its live instance is a *reactive.Signal[T].
type Pebble[T any] struct {
	kind      Kind
	name      string
	initial   Lazy[T]
	eq        equalsPolicy[T]
	transient bool
}

// NewPebble defines a plain cell with an initial value.
func NewPebble[T any](initial T, opts ...Option) *Pebble[T] {
	return newPebble(LazyValue(initial), opts)
}

// NewPebbleFunc defines a plain cell whose initial value is produced by fn.
// fn runs once per Manager, when the cell is first accessed.
func NewPebbleFunc[T any](fn func() T, opts ...Option) *Pebble[T] {
	return newPebble(LazyFunc(fn), opts)
}

func newPebble[T any](initial Lazy[T], opts []Option) *Pebble[T] {
	c := buildConfig(KindPebble, opts)
	return &Pebble[T]{
		kind:      KindPebble,
		name:      c.name,
		initial:   initial,
		eq:        equalsFor[T](c),
		transient: c.transient,
	}
}

// Name returns the cell identity.
func (p *Pebble[T]) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Kind returns KindPebble for constructed definitions.
func (p *Pebble[T]) Kind() Kind {
	if p == nil {
		return KindUnknown
	}
	return p.kind
}

// IsTransient reports whether the cell is excluded from snapshots.
func (p *Pebble[T]) IsTransient() bool {
	return p.transient
}

func (p *Pebble[T]) construct(m *Manager) any {
	value, restored := p.restored(m)
	if !restored {
		value = p.initial.Unwrap()
	}
	return p.eq.signal(reactive.NewSignal(value))
}

// restored consumes a pending snapshot value for this cell, if any.
func (p *Pebble[T]) restored(m *Manager) (T, bool) {
	var v T
	raw, ok := m.takePending(p.name)
	if !ok || p.transient {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		m.logger.Warn("pebble snapshot value ignored",
			"cell", p.name,
			"manager", m.id,
			"error", err)
		return v, false
	}
	return v, true
}

// signal returns the live instance in m, constructing it if needed.
func (p *Pebble[T]) signal(m *Manager) *reactive.Signal[T] {
	s, ok := m.instance(p).(*reactive.Signal[T])
	if !ok {
		m.conflict(p)
	}
	return s
}

func (p *Pebble[T]) get(m *Manager) T {
	return p.signal(m).Get()
}

func (p *Pebble[T]) read(m *Manager) any {
	return p.get(m)
}

func (p *Pebble[T]) apply(m *Manager, v T) T {
	return p.signal(m).Update(func(T) T { return v })
}

// write accepts a T or an updater func(T) T.
func (p *Pebble[T]) write(m *Manager, action any) any {
	switch a := action.(type) {
	case func(T) T:
		return p.signal(m).Update(a)
	case T:
		return p.apply(m, a)
	}
	if action == nil && nilable[T]() {
		var zero T
		return p.apply(m, zero)
	}
	m.violate(invalidAction[T](p.name, action))
	return nil
}

func (p *Pebble[T]) decodeAction(data []byte) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.New("P005").WithCell(p.name).Wrap(err)
	}
	return v, nil
}

func (p *Pebble[T]) encode(inst any) (json.RawMessage, error) {
	s, ok := inst.(*reactive.Signal[T])
	if !ok {
		return nil, errors.New("P012").WithCell(p.name)
	}
	return json.Marshal(s.Peek())
}

func (p *Pebble[T]) restore(inst any, data json.RawMessage) error {
	s, ok := inst.(*reactive.Signal[T])
	if !ok {
		return errors.New("P012").WithCell(p.name)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.New("P040").WithCell(p.name).Wrap(err)
	}
	s.Set(v)
	return nil
}

// ============================================================================
// Computed
// ============================================================================

// Computed is a read-only derived cell. Its live instance is a
// *reactive.Memo[T].
type Computed[T any] struct {
	kind       Kind
	name       string
	compute    func(ctx Context, prev T) T
	initial    Lazy[T]
	hasInitial bool
	eq         equalsPolicy[T]
}

// NewComputed defines a derived cell. compute receives the Context and the
// previous value: the WithInitial seed on the first run, or the zero value of
// T when the cell is unseeded.
func NewComputed[T any](compute func(ctx Context, prev T) T, opts ...Option) *Computed[T] {
	c := buildConfig(KindComputed, opts)
	initial, seeded := initialFor[T](c)
	return &Computed[T]{
		kind:       KindComputed,
		name:       c.name,
		compute:    compute,
		initial:    initial,
		hasInitial: seeded,
		eq:         equalsFor[T](c),
	}
}

// Name returns the cell identity.
func (c *Computed[T]) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Kind returns KindComputed for constructed definitions.
func (c *Computed[T]) Kind() Kind {
	if c == nil {
		return KindUnknown
	}
	return c.kind
}

// HasInitial reports whether the cell was seeded with WithInitial or
// WithInitialFunc.
func (c *Computed[T]) HasInitial() bool {
	return c.hasInitial
}

func (c *Computed[T]) construct(m *Manager) any {
	var seed T
	if c.hasInitial {
		seed = c.initial.Unwrap()
	}
	return c.eq.memo(reactive.NewMemo(func(prev T) T {
		defer m.cycle(c)
		return c.compute(m, prev)
	}, seed))
}

func (c *Computed[T]) memo(m *Manager) *reactive.Memo[T] {
	memo, ok := m.instance(c).(*reactive.Memo[T])
	if !ok {
		m.conflict(c)
	}
	return memo
}

func (c *Computed[T]) get(m *Manager) T {
	return c.memo(m).Get()
}

func (c *Computed[T]) read(m *Manager) any {
	return c.get(m)
}

// ============================================================================
// Proxy
// ============================================================================

// ProxyMethods are the read and write halves of a Proxy cell.
type ProxyMethods[T, A, R any] struct {
	// Get computes the value. It is re-run when the cells it reads change.
	Get func(ctx Context) T

	// Set handles a write. A nil Set makes the proxy read-only.
	Set func(ctx Context, action A) R
}

// Proxy is a cell whose reads and writes are intercepted. Its live instance
// is a *ProxySignal[T, A, R].
type Proxy[T, A, R any] struct {
	kind    Kind
	name    string
	methods ProxyMethods[T, A, R]
	eq      equalsPolicy[T]
}

// NewProxy defines a proxy cell.
func NewProxy[T, A, R any](methods ProxyMethods[T, A, R], opts ...Option) *Proxy[T, A, R] {
	c := buildConfig(KindProxy, opts)
	return &Proxy[T, A, R]{
		kind:    KindProxy,
		name:    c.name,
		methods: methods,
		eq:      equalsFor[T](c),
	}
}

// Name returns the cell identity.
func (p *Proxy[T, A, R]) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Kind returns KindProxy for constructed definitions.
func (p *Proxy[T, A, R]) Kind() Kind {
	if p == nil {
		return KindUnknown
	}
	return p.kind
}

func (p *Proxy[T, A, R]) construct(m *Manager) any {
	get, set := p.methods.Get, p.methods.Set
	ps := &ProxySignal[T, A, R]{
		memo: p.eq.memo(reactive.NewMemo(func(T) T {
			defer m.cycle(p)
			return get(m)
		}, *new(T))),
	}
	if set != nil {
		ps.set = func(a A) R { return set(m, a) }
	}
	return ps
}

func (p *Proxy[T, A, R]) signal(m *Manager) *ProxySignal[T, A, R] {
	ps, ok := m.instance(p).(*ProxySignal[T, A, R])
	if !ok {
		m.conflict(p)
	}
	return ps
}

func (p *Proxy[T, A, R]) get(m *Manager) T {
	return p.signal(m).Get()
}

func (p *Proxy[T, A, R]) read(m *Manager) any {
	return p.get(m)
}

func (p *Proxy[T, A, R]) apply(m *Manager, action A) R {
	ps := p.signal(m)
	if ps.set == nil {
		m.violate(errors.New("P004").WithCell(p.name).
			WithSuggestion("proxy cell has no Set method"))
	}
	return ps.Set(action)
}

func (p *Proxy[T, A, R]) write(m *Manager, action any) any {
	a, ok := actionAs[A](action)
	if !ok {
		m.violate(invalidAction[A](p.name, action))
	}
	return p.apply(m, a)
}

func (p *Proxy[T, A, R]) decodeAction(data []byte) (any, error) {
	return decodeAs[A](p.name, data)
}

// ============================================================================
// Custom
// ============================================================================

// CustomMethods are returned by a Custom cell's factory.
type CustomMethods[T, A, R any] struct {
	// Get returns the value. Calling track registers the read with the
	// active computation.
	Get func(track func()) T

	// Set handles a write. Calling trigger marks every computation that
	// called track as stale. A nil Set makes the cell read-only.
	Set func(trigger func(), action A) R
}

// Custom is a cell with manual change tracking, for state the reactive engine
// cannot observe. Its live instance is a *CustomSignal[T, A, R].
type Custom[T, A, R any] struct {
	kind    Kind
	name    string
	factory func(ctx Context) CustomMethods[T, A, R]
}

// NewCustom defines a custom cell. factory runs once per Manager, when the
// cell is first accessed. Only WithName and WithAllocator apply to custom
// cells; change detection belongs to the factory's track and trigger calls.
func NewCustom[T, A, R any](factory func(ctx Context) CustomMethods[T, A, R], opts ...Option) *Custom[T, A, R] {
	c := buildConfig(KindCustom, opts)
	return &Custom[T, A, R]{
		kind:    KindCustom,
		name:    c.name,
		factory: factory,
	}
}

// Name returns the cell identity.
func (c *Custom[T, A, R]) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Kind returns KindCustom for constructed definitions.
func (c *Custom[T, A, R]) Kind() Kind {
	if c == nil {
		return KindUnknown
	}
	return c.kind
}

func (c *Custom[T, A, R]) construct(m *Manager) any {
	return newCustomSignal(c.factory(m))
}

func (c *Custom[T, A, R]) signal(m *Manager) *CustomSignal[T, A, R] {
	cs, ok := m.instance(c).(*CustomSignal[T, A, R])
	if !ok {
		m.conflict(c)
	}
	return cs
}

func (c *Custom[T, A, R]) get(m *Manager) T {
	return c.signal(m).Get()
}

func (c *Custom[T, A, R]) read(m *Manager) any {
	return c.get(m)
}

func (c *Custom[T, A, R]) apply(m *Manager, action A) R {
	cs := c.signal(m)
	if cs.methods.Set == nil {
		m.violate(errors.New("P004").WithCell(c.name).
			WithSuggestion("custom cell factory returned no Set method"))
	}
	return cs.Set(action)
}

func (c *Custom[T, A, R]) write(m *Manager, action any) any {
	a, ok := actionAs[A](action)
	if !ok {
		m.violate(invalidAction[A](c.name, action))
	}
	return c.apply(m, a)
}

func (c *Custom[T, A, R]) decodeAction(data []byte) (any, error) {
	return decodeAs[A](c.name, data)
}

// ============================================================================
// Helpers
// ============================================================================

// actionAs converts an untyped action to A. A nil action converts to the
// zero value when A can hold nil.
func actionAs[A any](action any) (A, bool) {
	if a, ok := action.(A); ok {
		return a, true
	}
	var zero A
	return zero, action == nil && nilable[A]()
}

func decodeAs[A any](name string, data []byte) (any, error) {
	var a A
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.New("P005").WithCell(name).Wrap(err)
	}
	return a, nil
}

func nilable[T any]() bool {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func invalidAction[T any](name string, got any) *errors.PebbleError {
	return errors.New("P005").
		WithCell(name).
		WithSuggestion("expected " + reflect.TypeOf((*T)(nil)).Elem().String() + ", got " + typeName(got))
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

var (
	_ Readable[int]       = (*Pebble[int])(nil)
	_ Writable[int, int]  = (*Pebble[int])(nil)
	_ Readable[int]       = (*Computed[int])(nil)
	_ Readable[int]       = (*Proxy[int, int, int])(nil)
	_ Writable[int, bool] = (*Proxy[int, int, bool])(nil)
	_ Readable[int]       = (*Custom[int, int, int])(nil)
	_ Writable[int, bool] = (*Custom[int, int, bool])(nil)
	_ writer              = (*Pebble[int])(nil)
	_ writer              = (*Proxy[int, int, int])(nil)
	_ writer              = (*Custom[int, int, int])(nil)
)
