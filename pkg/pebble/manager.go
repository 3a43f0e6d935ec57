package pebble

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/reactive"
)

// Manager is the cell registry of one Boundary. It holds at most one live
// instance per cell identity and implements Context for every closure the
// cells carry.
//
// Instances are constructed on first access with the boundary's owner
// current, so their lifetime is the boundary's even when construction is
// triggered from inside another cell's computation. The Manager has no
// disposal of its own; disposing the owner releases everything.
type Manager struct {
	id     string
	owner  *reactive.Owner
	logger *slog.Logger

	metrics *Metrics
	tracer  trace.Tracer

	// spanCtx is the context of the innermost construction span, so nested
	// constructions produce nested spans.
	spanCtx context.Context

	// One map per kind, keyed by identity. Protected by mu, which is never
	// held while a cell is constructed.
	pebbles   map[string]*slot
	computeds map[string]*slot
	proxies   map[string]*slot
	customs   map[string]*slot

	// constructing marks identities whose first construction is running.
	constructing map[string]Kind

	// pending holds restored snapshot values for cells not yet live.
	pending map[string]json.RawMessage

	observers    map[uint64]func(WriteEvent)
	nextObserver uint64

	mu sync.Mutex
}

// slot is a live instance and the definition that produced it.
type slot struct {
	cell Cell
	inst any
}

func newManager(owner *reactive.Owner, cfg *boundaryConfig) *Manager {
	id := uuid.NewString()
	m := &Manager{
		id:           id,
		owner:        owner,
		logger:       cfg.logger.With("component", "pebble_manager", "manager", id),
		metrics:      cfg.metrics,
		tracer:       cfg.tracer,
		spanCtx:      cfg.ctx,
		pebbles:      make(map[string]*slot),
		computeds:    make(map[string]*slot),
		proxies:      make(map[string]*slot),
		customs:      make(map[string]*slot),
		constructing: make(map[string]Kind),
		pending:      make(map[string]json.RawMessage),
		observers:    make(map[uint64]func(WriteEvent)),
	}
	owner.OnCleanup(m.release)
	return m
}

// ID returns the manager's unique identifier.
func (m *Manager) ID() string {
	return m.id
}

// Owner returns the owner every instance is constructed under.
func (m *Manager) Owner() *reactive.Owner {
	return m.owner
}

// Get returns the current value of cell, constructing its instance on first
// access. Inside a computation the read is tracked.
//
// Get panics with ErrUnknownKind for a zero-value or nil definition and with
// ErrIdentityConflict when the identity is live as a different kind or type.
func (m *Manager) Get(cell Cell) any {
	kind := kindOf(cell)
	switch kind {
	case KindPebble, KindComputed, KindProxy, KindCustom:
		m.metrics.read(kind)
		return cell.read(m)
	default:
		m.violate(unknownKind(cell))
		return nil
	}
}

// Set writes action to cell and returns the write's result.
//
// Pebble cells accept a T or an updater func(T) T and return the stored
// value. Proxy and Custom cells accept their action type A and return R.
// Computed cells are read-only: Set panics with ErrReadOnly and nothing is
// written.
func (m *Manager) Set(cell Cell, action any) any {
	kind := kindOf(cell)
	switch kind {
	case KindPebble, KindProxy, KindCustom:
		result := cell.(writer).write(m, action)
		m.metrics.write(kind)
		m.emit(cell)
		return result
	case KindComputed:
		m.violate(errors.New("P004").WithCell(cell.Name()))
		return nil
	default:
		m.violate(unknownKind(cell))
		return nil
	}
}

// Peek returns the current value of cell without tracking the read.
func (m *Manager) Peek(cell Cell) any {
	var v any
	reactive.Untracked(func() { v = m.Get(cell) })
	return v
}

// Has reports whether cell has a live instance in this manager.
func (m *Manager) Has(cell Cell) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	store := m.storeLocked(kindOf(cell))
	if store == nil {
		return false
	}
	_, ok := store[cell.Name()]
	return ok
}

// Cells returns the definitions of every live instance, sorted by identity.
func (m *Manager) Cells() []Cell {
	m.mu.Lock()
	cells := make([]Cell, 0, m.countLocked())
	for _, store := range []map[string]*slot{m.pebbles, m.computeds, m.proxies, m.customs} {
		for _, s := range store {
			cells = append(cells, s.cell)
		}
	}
	m.mu.Unlock()

	sort.Slice(cells, func(i, j int) bool {
		return cells[i].Name() < cells[j].Name()
	})
	return cells
}

// Len returns the number of live instances.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked()
}

// instance returns the live instance for cell, constructing it on a miss.
func (m *Manager) instance(cell Cell) any {
	kind := kindOf(cell)
	name := cell.Name()

	m.mu.Lock()
	store := m.storeLocked(kind)
	if store == nil {
		m.mu.Unlock()
		m.violate(unknownKind(cell))
	}
	if s, ok := store[name]; ok {
		m.mu.Unlock()
		return s.inst
	}
	if building, ok := m.constructing[name]; ok {
		m.mu.Unlock()
		if building == kind {
			m.violate(errors.New("P010").WithCell(name))
		}
		m.conflict(cell)
	}
	if other := m.liveKindLocked(name); other != KindUnknown {
		m.mu.Unlock()
		m.conflict(cell)
	}
	m.constructing[name] = kind
	m.mu.Unlock()

	return m.construct(cell, store)
}

// construct runs the cell's constructor under the manager's owner and stores
// the result. If the constructor panics nothing is stored.
func (m *Manager) construct(cell Cell, store map[string]*slot) any {
	kind, name := cell.Kind(), cell.Name()

	parent := m.spanCtx
	spanCtx, span := m.startConstruct(parent, cell)
	m.spanCtx = spanCtx

	done := false
	defer func() {
		m.spanCtx = parent
		m.mu.Lock()
		delete(m.constructing, name)
		m.mu.Unlock()
		if !done {
			endConstruct(span, errors.Newf(errors.CategoryContract, "construction of %q panicked", name))
		}
	}()

	inst := reactive.RunWithOwner(m.owner, func() any {
		return cell.construct(m)
	})

	m.mu.Lock()
	store[name] = &slot{cell: cell, inst: inst}
	m.mu.Unlock()
	done = true

	endConstruct(span, nil)
	m.metrics.created(kind)
	m.logger.Debug("pebble instance created", "cell", name, "kind", kind.String())
	return inst
}

// release runs when the owner is disposed.
func (m *Manager) release() {
	m.mu.Lock()
	counts := map[Kind]int{
		KindPebble:   len(m.pebbles),
		KindComputed: len(m.computeds),
		KindProxy:    len(m.proxies),
		KindCustom:   len(m.customs),
	}
	m.observers = make(map[uint64]func(WriteEvent))
	m.mu.Unlock()

	for kind, n := range counts {
		m.metrics.released(kind, n)
	}
	m.logger.Debug("pebble manager released",
		"pebbles", counts[KindPebble],
		"computeds", counts[KindComputed],
		"proxies", counts[KindProxy],
		"customs", counts[KindCustom])
}

// takePending removes and returns a restored value waiting for name.
func (m *Manager) takePending(name string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.pending[name]
	if ok {
		delete(m.pending, name)
	}
	return raw, ok
}

// violate records a contract violation and panics with it.
func (m *Manager) violate(err *errors.PebbleError) {
	m.metrics.violation(err.Code)
	m.logger.Warn("pebble contract violation",
		"code", err.Code,
		"cell", err.Cell,
		"error", err.Message)
	panic(err)
}

// cycle is deferred around Computed and Proxy computations. It turns the
// engine's cycle panic into ErrCircularConstruction naming cell.
func (m *Manager) cycle(cell Cell) {
	r := recover()
	if r == nil {
		return
	}
	if r == reactive.ErrCycle {
		m.violate(errors.New("P010").WithCell(cell.Name()).Wrap(reactive.ErrCycle))
	}
	panic(r)
}

// conflict panics with ErrIdentityConflict for cell.
func (m *Manager) conflict(cell Cell) {
	m.violate(errors.New("P012").
		WithCell(cell.Name()).
		WithSuggestion("give each cell definition a distinct name"))
}

func (m *Manager) storeLocked(kind Kind) map[string]*slot {
	switch kind {
	case KindPebble:
		return m.pebbles
	case KindComputed:
		return m.computeds
	case KindProxy:
		return m.proxies
	case KindCustom:
		return m.customs
	default:
		return nil
	}
}

// liveKindLocked returns the kind name is live as, or KindUnknown.
func (m *Manager) liveKindLocked(name string) Kind {
	for _, kind := range []Kind{KindPebble, KindComputed, KindProxy, KindCustom} {
		if _, ok := m.storeLocked(kind)[name]; ok {
			return kind
		}
	}
	return KindUnknown
}

func (m *Manager) countLocked() int {
	return len(m.pebbles) + len(m.computeds) + len(m.proxies) + len(m.customs)
}

// kindOf is cell.Kind() with a nil interface reported as KindUnknown.
func kindOf(cell Cell) Kind {
	if cell == nil {
		return KindUnknown
	}
	return cell.Kind()
}

func unknownKind(cell Cell) *errors.PebbleError {
	err := errors.New("P003")
	if cell != nil {
		err.WithCell(cell.Name())
	}
	return err
}

var _ Context = (*Manager)(nil)
