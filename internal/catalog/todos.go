package catalog

import (
	"github.com/vango-dev/pebble/pkg/pebble"
)

// Todos builds the "todos" catalog:
//
//	todos       plain []string
//	todo-count  number of items, derived from todos
//	todo-add    reads the last item; writing s appends s and returns the new length
//	draft       transient string, never persisted
func Todos() *Catalog {
	todos := pebble.NewPebbleFunc(func() []string { return []string{} }, pebble.WithName("todos"))

	count := pebble.NewComputed(func(ctx pebble.Context, _ int) int {
		return len(pebble.Get(ctx, todos))
	}, pebble.WithName("todo-count"))

	add := pebble.NewProxy(pebble.ProxyMethods[string, string, int]{
		Get: func(ctx pebble.Context) string {
			items := pebble.Get(ctx, todos)
			if len(items) == 0 {
				return ""
			}
			return items[len(items)-1]
		},
		Set: func(ctx pebble.Context, item string) int {
			next := pebble.Update(ctx, todos, func(items []string) []string {
				out := make([]string, len(items), len(items)+1)
				copy(out, items)
				return append(out, item)
			})
			return len(next)
		},
	}, pebble.WithName("todo-add"))

	draft := pebble.NewPebble("", pebble.WithName("draft"), pebble.Transient())

	return &Catalog{
		Name:        "todos",
		Description: "A todo list with a derived count, an append proxy and a transient draft.",
		Cells:       []pebble.Cell{todos, count, add, draft},
	}
}
