package pebble

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBoundary returns a root boundary disposed at the end of the test.
func newTestBoundary(t *testing.T, opts ...BoundaryOption) *Boundary {
	t.Helper()
	opts = append([]BoundaryOption{WithLogger(testLogger())}, opts...)
	b := NewRoot(opts...)
	t.Cleanup(b.Dispose)
	return b
}

// counterCells is the cell set most tests use: a plain count, a title
// derived from it, a proxy doubling it, and a custom cell over external
// state.
type counterCells struct {
	count   *Pebble[int]
	title   *Computed[string]
	doubled *Proxy[int, int, int]
	ticks   *Custom[int, int, int]

	external int
}

func newCounterCells(initial int) *counterCells {
	c := &counterCells{}
	c.count = NewPebble(initial, WithName("count"))
	c.title = NewComputed(func(ctx Context, _ string) string {
		return "Count: " + strconv.Itoa(Get(ctx, c.count))
	}, WithName("count-title"))
	c.doubled = NewProxy(ProxyMethods[int, int, int]{
		Get: func(ctx Context) int {
			return Get(ctx, c.count) * 2
		},
		Set: func(ctx Context, delta int) int {
			return Update(ctx, c.count, func(n int) int { return n + delta })
		},
	}, WithName("doubled"))
	c.ticks = NewCustom(func(Context) CustomMethods[int, int, int] {
		return CustomMethods[int, int, int]{
			Get: func(track func()) int {
				track()
				return c.external
			},
			Set: func(trigger func(), delta int) int {
				c.external += delta
				trigger()
				return c.external
			},
		}
	}, WithName("ticks"))
	return c
}

// mustPanicWith runs fn and checks it panics with an error matching target.
func mustPanicWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %v", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic = %v, want %v", r, target)
		}
	}()
	fn()
}
