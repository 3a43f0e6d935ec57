package pebble

import (
	"encoding/json"
	stderrors "errors"
	"sort"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/reactive"
)

// persistable is implemented by Pebble cells.
type persistable interface {
	IsTransient() bool
	encode(inst any) (json.RawMessage, error)
	restore(inst any, data json.RawMessage) error
}

// Snapshot returns the JSON-encoded values of every live, non-transient
// Pebble cell, keyed by identity. Derived, proxy and custom cells are not
// included; their values follow from the plain cells they read.
func (m *Manager) Snapshot() (map[string]json.RawMessage, error) {
	m.mu.Lock()
	slots := make([]*slot, 0, len(m.pebbles))
	for _, s := range m.pebbles {
		slots = append(slots, s)
	}
	m.mu.Unlock()

	values := make(map[string]json.RawMessage, len(slots))
	var errs []error
	for _, s := range slots {
		p := s.cell.(persistable)
		if p.IsTransient() {
			continue
		}
		data, err := p.encode(s.inst)
		if err != nil {
			errs = append(errs, errors.FromError(err, "P040").WithCell(s.cell.Name()))
			continue
		}
		values[s.cell.Name()] = data
	}
	return values, stderrors.Join(errs...)
}

// Restore writes snapshot values back. Live Pebble cells are set
// immediately, in one batch. Values for cells that are not live yet are kept
// and used instead of the initial value when the cell is first accessed.
// Transient cells are skipped. Write observers see one event per live cell
// restored, in name order, after the batch completes.
func (m *Manager) Restore(values map[string]json.RawMessage) error {
	var errs []error
	var written []Cell
	pending := 0

	reactive.Batch(func() {
		for name, data := range values {
			m.mu.Lock()
			s, live := m.pebbles[name]
			if !live {
				m.pending[name] = data
			}
			m.mu.Unlock()
			if !live {
				pending++
				continue
			}

			p := s.cell.(persistable)
			if p.IsTransient() {
				continue
			}
			if err := p.restore(s.inst, data); err != nil {
				errs = append(errs, err)
				continue
			}
			written = append(written, s.cell)
		}
	})

	sort.Slice(written, func(i, j int) bool { return written[i].Name() < written[j].Name() })
	for _, cell := range written {
		m.metrics.write(KindPebble)
		m.emit(cell)
	}

	m.logger.Debug("pebble snapshot restored",
		"live", len(written),
		"pending", pending)
	return stderrors.Join(errs...)
}
