// Package pebble provides named, lazily instantiated reactive cells.
//
// A cell is declared once, usually at package level, and shared by
// reference:
//
//	var count = pebble.NewPebble(0, pebble.WithName("count"))
//
//	var title = pebble.NewComputed(func(ctx pebble.Context, _ string) string {
//	    return fmt.Sprintf("Count: %d", pebble.Get(ctx, count))
//	})
//
// A definition is pure data. Its live instance is created the first time it
// is read or written through a Manager, and every later access within that
// Manager returns the same instance. Managers are created by a Boundary,
// which anchors every instance to a reactive.Owner so that instances live
// exactly as long as that scope:
//
//	b, err := pebble.Provide(root)
//	if err != nil {
//	    return err
//	}
//	defer b.Dispose()
//
//	m := b.Manager()
//	pebble.Set(m, count, 1)
//	pebble.Get(m, title) // "Count: 1"
//
// # Cell Kinds
//
// There are four kinds of cell:
//
//   - Pebble: plain mutable state backed by a reactive.Signal.
//   - Computed: read-only derived state backed by a reactive.Memo. The
//     computation receives the Context and the previous value.
//   - Proxy: a get/set pair. Reads re-run Get whenever the cells it reads
//     change; writes are forwarded to Set, which usually writes other cells.
//   - Custom: a factory that runs once per Manager and returns get/set
//     methods managing their own change detection through track and
//     trigger callbacks. Used for state the reactive engine cannot observe.
//
// # Context
//
// Every closure a cell carries receives the Manager as a Context and may
// read or write any other cell through it, including cells that have not
// been instantiated yet. The typed helpers Get, Set, Update and Dispatch
// are the usual way to use a Context.
//
// Contract violations inside the Context (writing a Computed cell, passing
// an action of the wrong type, a cell constructing itself) panic with a
// *errors.PebbleError. TryGet and TrySet convert these panics into errors.
//
// # Concurrency
//
// A Manager is meant to be driven from one goroutine at a time, like the
// reactive graph beneath it. Boundary.Do serializes access from other
// goroutines.
package pebble
