package pebble

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/reactive"
)

// Option configures a cell definition.
type Option func(*cellConfig)

// cellConfig collects options before the typed constructor checks them.
// Typed options are stored as any and asserted against the cell's type.
type cellConfig struct {
	name      string
	allocator *Allocator
	equals    any
	always    bool
	initial   any
	transient bool
}

// WithName sets the cell identity. Without it a default identity such as
// "pebble-3" is allocated.
func WithName(name string) Option {
	return func(c *cellConfig) {
		c.name = name
	}
}

// WithAllocator sets the allocator used for the default identity.
func WithAllocator(a *Allocator) Option {
	return func(c *cellConfig) {
		c.allocator = a
	}
}

// WithEquals sets the comparison used to decide whether a new value is a
// change. Returning true suppresses notification.
func WithEquals[T any](fn func(a, b T) bool) Option {
	return func(c *cellConfig) {
		c.equals = fn
		c.always = false
	}
}

// AlwaysNotify disables the equality check: every write notifies dependents,
// even when the value is unchanged.
func AlwaysNotify() Option {
	return func(c *cellConfig) {
		c.equals = nil
		c.always = true
	}
}

// WithInitial seeds a Computed cell. The computation receives v as its
// previous value on its first run.
func WithInitial[T any](v T) Option {
	return func(c *cellConfig) {
		c.initial = LazyValue(v)
	}
}

// WithInitialFunc seeds a Computed cell with the result of fn, called once
// when the cell is instantiated.
func WithInitialFunc[T any](fn func() T) Option {
	return func(c *cellConfig) {
		c.initial = LazyFunc(fn)
	}
}

// Transient excludes a Pebble cell from Manager snapshots.
func Transient() Option {
	return func(c *cellConfig) {
		c.transient = true
	}
}

func buildConfig(kind Kind, opts []Option) *cellConfig {
	c := &cellConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.name == "" {
		a := c.allocator
		if a == nil {
			a = DefaultAllocator
		}
		c.name = a.name(kind)
	}
	return c
}

// equalsPolicy is the typed form of WithEquals and AlwaysNotify.
type equalsPolicy[T any] struct {
	fn     func(a, b T) bool
	always bool
}

func (e equalsPolicy[T]) signal(s *reactive.Signal[T]) *reactive.Signal[T] {
	switch {
	case e.always:
		s.AlwaysNotify()
	case e.fn != nil:
		s.WithEquals(e.fn)
	}
	return s
}

func (e equalsPolicy[T]) memo(m *reactive.Memo[T]) *reactive.Memo[T] {
	switch {
	case e.always:
		m.AlwaysNotify()
	case e.fn != nil:
		m.WithEquals(e.fn)
	}
	return m
}

func equalsFor[T any](c *cellConfig) equalsPolicy[T] {
	p := equalsPolicy[T]{always: c.always}
	if c.equals != nil {
		fn, ok := c.equals.(func(a, b T) bool)
		if !ok {
			panic(optionTypeError[T](c.name, "WithEquals", c.equals))
		}
		p.fn = fn
	}
	return p
}

func initialFor[T any](c *cellConfig) (Lazy[T], bool) {
	if c.initial == nil {
		return Lazy[T]{}, false
	}
	l, ok := c.initial.(Lazy[T])
	if !ok {
		panic(optionTypeError[T](c.name, "WithInitial", c.initial))
	}
	return l, true
}

func optionTypeError[T any](name, option string, got any) *errors.PebbleError {
	return errors.New("P011").
		WithCell(name).
		WithSuggestion(fmt.Sprintf("%s was given %T; the cell holds %s", option, got, reflect.TypeOf((*T)(nil)).Elem()))
}
