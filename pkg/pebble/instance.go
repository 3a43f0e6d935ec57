package pebble

import (
	"github.com/vango-dev/pebble/pkg/reactive"
)

// ProxySignal is the live instance of a Proxy cell.
type ProxySignal[T, A, R any] struct {
	memo *reactive.Memo[T]
	set  func(A) R
}

// Get returns the proxied value and tracks it for the active listener.
func (p *ProxySignal[T, A, R]) Get() T {
	return p.memo.Get()
}

// Peek returns the proxied value without tracking it.
func (p *ProxySignal[T, A, R]) Peek() T {
	return p.memo.Peek()
}

// Set forwards action to the proxy's Set method.
// It panics with ErrReadOnly when the proxy has no Set method.
func (p *ProxySignal[T, A, R]) Set(action A) R {
	if p.set == nil {
		panic(ErrReadOnly)
	}
	return p.set(action)
}

// ReadOnly reports whether the proxy has no Set method.
func (p *ProxySignal[T, A, R]) ReadOnly() bool {
	return p.set == nil
}

// CustomSignal is the live instance of a Custom cell.
type CustomSignal[T, A, R any] struct {
	methods CustomMethods[T, A, R]

	// version carries no data. Reading it is the dependency edge; every
	// write counts as a change.
	version *reactive.Signal[struct{}]
}

func newCustomSignal[T, A, R any](methods CustomMethods[T, A, R]) *CustomSignal[T, A, R] {
	return &CustomSignal[T, A, R]{
		methods: methods,
		version: reactive.NewSignal(struct{}{}).AlwaysNotify(),
	}
}

// Get calls the factory's Get with a track callback.
func (c *CustomSignal[T, A, R]) Get() T {
	return c.methods.Get(c.track)
}

// Peek calls the factory's Get without tracking.
func (c *CustomSignal[T, A, R]) Peek() T {
	var v T
	reactive.Untracked(func() { v = c.Get() })
	return v
}

// Set calls the factory's Set with a trigger callback.
// It panics with ErrReadOnly when the factory returned no Set method.
func (c *CustomSignal[T, A, R]) Set(action A) R {
	if c.methods.Set == nil {
		panic(ErrReadOnly)
	}
	return c.methods.Set(c.trigger, action)
}

// ReadOnly reports whether the factory returned no Set method.
func (c *CustomSignal[T, A, R]) ReadOnly() bool {
	return c.methods.Set == nil
}

func (c *CustomSignal[T, A, R]) track() {
	c.version.Get()
}

func (c *CustomSignal[T, A, R]) trigger() {
	c.version.Set(struct{}{})
}
