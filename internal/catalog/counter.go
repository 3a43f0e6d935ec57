package catalog

import (
	"strconv"

	"github.com/vango-dev/pebble/pkg/pebble"
)

// Counter builds the "counter" catalog:
//
//	count        plain int, initially 0
//	count-title  "Count: N", derived from count
//	doubled      reads count*2; writing d adds d to count
//	ticks        custom cell over a counter held outside the graph
func Counter() *Catalog {
	count := pebble.NewPebble(0, pebble.WithName("count"))

	title := pebble.NewComputed(func(ctx pebble.Context, _ string) string {
		return "Count: " + strconv.Itoa(pebble.Get(ctx, count))
	}, pebble.WithName("count-title"))

	doubled := pebble.NewProxy(pebble.ProxyMethods[int, int, int]{
		Get: func(ctx pebble.Context) int {
			return pebble.Get(ctx, count) * 2
		},
		Set: func(ctx pebble.Context, delta int) int {
			return pebble.Update(ctx, count, func(n int) int { return n + delta })
		},
	}, pebble.WithName("doubled"))

	var external int
	ticks := pebble.NewCustom(func(pebble.Context) pebble.CustomMethods[int, int, int] {
		return pebble.CustomMethods[int, int, int]{
			Get: func(track func()) int {
				track()
				return external
			},
			Set: func(trigger func(), delta int) int {
				external += delta
				trigger()
				return external
			},
		}
	}, pebble.WithName("ticks"))

	return &Catalog{
		Name:        "counter",
		Description: "A count with a derived title, a doubling proxy and a custom tick counter.",
		Cells:       []pebble.Cell{count, title, doubled, ticks},
	}
}
