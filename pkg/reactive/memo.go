package reactive

import (
	"errors"
	"sync"
)

// ErrCycle is the panic value raised when a memo reads itself, directly or
// through other memos, while it is computing.
var ErrCycle = errors.New("reactive: memo read itself during its own computation")

// memoState is the freshness of a memo's cached value.
type memoState uint8

const (
	// memoStale means the memo has never computed.
	memoStale memoState = iota
	// memoCheck means a source may have changed; versions must be verified.
	memoCheck
	// memoClean means the cached value is current.
	memoClean
)

// Memo is a cached computation that automatically tracks its dependencies.
//
// Memos are lazy: they compute only when read. When a source changes the
// memo is marked for a check and the mark propagates to its own subscribers;
// the next read verifies source versions and recomputes only if one of them
// actually moved. A recomputation that yields an equal value does not bump
// the memo's version, so downstream memos skip their own recomputation.
type Memo[T any] struct {
	base signalBase

	// compute receives the previous value (the seed on the first run).
	compute func(prev T) T

	value   T
	valueMu sync.RWMutex

	state memoState
	deps  dependencies

	eq equality[T]

	// computing guards against a memo reading itself.
	computing bool

	disposed bool
}

// NewMemo creates a memo. compute is not run until the first Get; on that
// run it receives seed as its previous value.
//
// A memo created while an Owner is current is detached from its sources when
// that Owner is disposed.
func NewMemo[T any](compute func(prev T) T, seed T) *Memo[T] {
	m := &Memo[T]{
		base:    signalBase{id: nextID()},
		compute: compute,
		value:   seed,
	}
	m.base.refresher = m.update

	if owner := lookupFrame().owner; owner != nil {
		owner.OnCleanup(m.dispose)
	}
	return m
}

// Get returns the memo's value, recomputing if necessary, and subscribes the
// current listener.
func (m *Memo[T]) Get() T {
	m.update()
	// Track after updating so the recorded version is the fresh one.
	track(&m.base)

	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// Peek returns the memo's value without subscribing.
// Still triggers recomputation if the value is out of date.
func (m *Memo[T]) Peek() T {
	m.update()
	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// MarkDirty marks the memo for a check and propagates to subscribers.
// Implements the Listener interface.
func (m *Memo[T]) MarkDirty() {
	if m.state != memoClean {
		// Never computed, or already marked and propagated.
		return
	}
	m.state = memoCheck
	m.base.notifySubscribers()
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// WithEquals configures a custom equality function for change detection.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.eq.fn = fn
	return m
}

// AlwaysNotify makes every recomputation count as a change.
func (m *Memo[T]) AlwaysNotify() *Memo[T] {
	m.eq.always = true
	return m
}

// IsDisposed reports whether the owning scope has been disposed.
func (m *Memo[T]) IsDisposed() bool {
	return m.disposed
}

// Subscribers returns the number of listeners currently subscribed.
func (m *Memo[T]) Subscribers() int {
	return m.base.subscriberCount()
}

// addSource records a source read during computation.
func (m *Memo[T]) addSource(source *signalBase) {
	m.deps.add(source)
}

// update brings the cached value up to date.
func (m *Memo[T]) update() {
	if m.computing {
		panic(ErrCycle)
	}
	if m.disposed {
		m.recomputeDetached()
		return
	}

	switch m.state {
	case memoClean:
		return
	case memoCheck:
		if !m.deps.changed() {
			m.state = memoClean
			return
		}
	}
	m.recompute()
}

// recompute runs the computation with this memo as the tracking listener.
func (m *Memo[T]) recompute() {
	m.deps.release(m)

	m.valueMu.RLock()
	prev := m.value
	m.valueMu.RUnlock()

	m.computing = true
	f := enterFrame()
	old := f.swapListener(m)
	defer func() {
		f.swapListener(old)
		m.computing = false
		f.leave()
	}()

	newValue := m.compute(prev)

	first := m.state == memoStale
	m.valueMu.Lock()
	if first || !m.eq.equals(prev, newValue) {
		m.value = newValue
		m.base.version.Add(1)
	}
	m.valueMu.Unlock()

	m.state = memoClean
}

// recomputeDetached runs the computation without tracking. Used once the
// owning scope is gone.
func (m *Memo[T]) recomputeDetached() {
	m.valueMu.RLock()
	prev := m.value
	m.valueMu.RUnlock()

	var newValue T
	Untracked(func() { newValue = m.compute(prev) })

	m.valueMu.Lock()
	m.value = newValue
	m.valueMu.Unlock()
}

// dispose detaches the memo from its sources.
func (m *Memo[T]) dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.deps.release(m)
}

// Ensure Memo implements tracker.
var _ tracker = (*Memo[int])(nil)
