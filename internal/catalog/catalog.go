// Package catalog holds the named cell sets that the pebble command and the
// scenario harness run against.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/pebble"
)

// Catalog is a named set of cell definitions.
type Catalog struct {
	Name        string
	Description string
	Cells       []pebble.Cell
}

// Lookup returns the cell with the given identity.
func (c *Catalog) Lookup(name string) (pebble.Cell, bool) {
	for _, cell := range c.Cells {
		if cell.Name() == name {
			return cell, true
		}
	}
	return nil, false
}

// Names returns the identities of the catalog's cells in definition order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Cells))
	for i, cell := range c.Cells {
		names[i] = cell.Name()
	}
	return names
}

var (
	mu        sync.RWMutex
	factories = map[string]func() *Catalog{
		"counter": Counter,
		"todos":   Todos,
	}
)

// Register adds a catalog factory. Each call to Get builds fresh definitions,
// so state held by custom cells is never shared between runs.
func Register(name string, factory func() *Catalog) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// Get builds the catalog registered under name.
func Get(name string) (*Catalog, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.New("P032").
			WithDetail("No catalog named " + name + " is registered.").
			WithSuggestion("Available catalogs: " + strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Names returns the registered catalog names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
