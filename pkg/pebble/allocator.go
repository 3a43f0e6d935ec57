package pebble

import (
	"strconv"
	"sync/atomic"
)

// Allocator hands out the numbers used in default cell identities.
// Numbers start at 0 and are never reused.
type Allocator struct {
	next atomic.Uint64
}

// DefaultAllocator is used by every constructor not given WithAllocator.
var DefaultAllocator = NewAllocator()

// NewAllocator returns an allocator starting at 0.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next number.
func (a *Allocator) Next() uint64 {
	return a.next.Add(1) - 1
}

// name builds a default identity such as "pebble-3".
func (a *Allocator) name(kind Kind) string {
	return kind.String() + "-" + strconv.FormatUint(a.Next(), 10)
}
