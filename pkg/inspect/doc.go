// Package inspect serves a live view of a pebble Boundary over HTTP.
//
// Routes:
//
//	GET  /cells         every catalog cell as {name, kind, value, live}
//	GET  /cells/{name}  one cell; 404 for names outside the catalog
//	POST /cells/{name}  write the JSON body as the cell's action
//	GET  /ws            WebSocket stream of write events
//	GET  /metrics       Prometheus metrics
//
// Reading a cell through the inspector instantiates it like any other read.
// All access to the boundary goes through Boundary.Do, so the inspector is
// safe to serve while other goroutines use the same boundary through Do.
package inspect
