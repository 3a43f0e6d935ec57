package pebble

// Lazy is a value or a function producing it.
type Lazy[T any] struct {
	value T
	fn    func() T
}

// LazyValue wraps a concrete value.
func LazyValue[T any](v T) Lazy[T] {
	return Lazy[T]{value: v}
}

// LazyFunc wraps a producer. A nil fn behaves like the zero value.
func LazyFunc[T any](fn func() T) Lazy[T] {
	return Lazy[T]{fn: fn}
}

// Unwrap returns the value, calling the producer if there is one.
// The result is not cached: every call invokes the producer again.
func (l Lazy[T]) Unwrap() T {
	if l.fn != nil {
		return l.fn()
	}
	return l.value
}

// IsFunc reports whether l holds a producer.
func (l Lazy[T]) IsFunc() bool {
	return l.fn != nil
}
