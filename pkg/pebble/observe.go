package pebble

import (
	"github.com/vango-dev/pebble/pkg/reactive"
)

// WriteEvent describes a successful write through a Manager.
type WriteEvent struct {
	// Manager is the ID of the manager that performed the write.
	Manager string `json:"manager"`

	// Cell is the identity of the written cell.
	Cell string `json:"cell"`

	// Kind is the kind of the written cell.
	Kind string `json:"kind"`

	// Value is the cell's value after the write.
	Value any `json:"value"`
}

// OnWrite registers fn to be called after every successful Set. fn runs
// synchronously on the writing goroutine and must not block. The returned
// function removes the observer.
func (m *Manager) OnWrite(fn func(WriteEvent)) (cancel func()) {
	m.mu.Lock()
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// emit notifies observers of a write to cell.
func (m *Manager) emit(cell Cell) {
	m.mu.Lock()
	if len(m.observers) == 0 {
		m.mu.Unlock()
		return
	}
	observers := make([]func(WriteEvent), 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.mu.Unlock()

	var value any
	reactive.Untracked(func() { value = cell.read(m) })

	event := WriteEvent{
		Manager: m.id,
		Cell:    cell.Name(),
		Kind:    cell.Kind().String(),
		Value:   value,
	}
	for _, fn := range observers {
		fn(event)
	}
}
