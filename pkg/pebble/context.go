package pebble

import (
	"github.com/vango-dev/pebble/internal/errors"
)

// Context is the protocol through which cells read and write other cells.
// *Manager implements it and passes itself to every cell closure.
//
// Both methods panic with a *errors.PebbleError on contract violations; see
// TryGet and TrySet for error-returning variants.
type Context interface {
	// Get returns the current value of cell.
	Get(cell Cell) any

	// Set writes action to cell and returns the write's result.
	Set(cell Cell, action any) any
}

// Get reads a cell through ctx.
func Get[T any](ctx Context, cell Readable[T]) T {
	v, _ := ctx.Get(cell).(T)
	return v
}

// Set stores value in a Pebble cell and returns the stored value.
func Set[T any](ctx Context, cell *Pebble[T], value T) T {
	v, _ := ctx.Set(cell, value).(T)
	return v
}

// Update applies fn to a Pebble cell's current value and returns the stored
// result.
//
// Example:
//
//	pebble.Update(ctx, count, func(n int) int { return n + 1 })
func Update[T any](ctx Context, cell *Pebble[T], fn func(T) T) T {
	v, _ := ctx.Set(cell, fn).(T)
	return v
}

// Dispatch sends action to a writable cell and returns its result.
//
// Example:
//
//	pebble.Dispatch(ctx, doubled, 3)
func Dispatch[A, R any](ctx Context, cell Writable[A, R], action A) R {
	r, _ := ctx.Set(cell, action).(R)
	return r
}

// TryGet is ctx.Get with contract violations returned as errors.
func TryGet(ctx Context, cell Cell) (v any, err error) {
	defer catch(&err)
	return ctx.Get(cell), nil
}

// TrySet is ctx.Set with contract violations returned as errors.
// When err is non-nil a Pebble target is left unchanged. A Proxy or Custom
// setter may already have written other cells before the violation.
func TrySet(ctx Context, cell Cell, action any) (result any, err error) {
	defer catch(&err)
	return ctx.Set(cell, action), nil
}

// DecodeAction decodes a JSON write for cell: a T for Pebble cells, an A for
// Proxy and Custom cells. Computed cells fail with ErrReadOnly.
func DecodeAction(cell Cell, data []byte) (any, error) {
	switch kindOf(cell) {
	case KindPebble, KindProxy, KindCustom:
		return cell.(writer).decodeAction(data)
	case KindComputed:
		return nil, errors.New("P004").WithCell(cell.Name())
	default:
		return nil, unknownKind(cell)
	}
}
