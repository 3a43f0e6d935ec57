package reactive

import (
	"sync/atomic"
)

// Effect is a reactive side effect that re-runs when its dependencies change.
//
// Effects run immediately when created. When a source changes the effect is
// scheduled on its Owner; Owner.RunPendingEffects re-runs it if one of the
// sources it read actually moved. Effects created without an Owner re-run
// synchronously on notification.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	deps  dependencies
	owner *Owner

	ran      bool
	pending  atomic.Bool
	disposed atomic.Bool
}

// CreateEffect creates and runs a new effect within the current owner.
//
// Example:
//
//	reactive.CreateEffect(func() reactive.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
func CreateEffect(fn func() Cleanup) *Effect {
	owner := lookupFrame().owner

	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: owner,
	}
	if owner != nil {
		owner.registerEffect(e)
	}

	e.run()
	return e
}

// MarkDirty schedules the effect for a re-run.
// Implements the Listener interface.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if !e.pending.CompareAndSwap(false, true) {
		return
	}
	if e.owner != nil {
		e.owner.scheduleEffect(e)
		return
	}
	e.run()
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// addSource records a source read during execution.
func (e *Effect) addSource(source *signalBase) {
	e.deps.add(source)
}

// run executes the effect function if it has never run or a source changed.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}
	e.pending.Store(false)

	if e.ran && !e.deps.changed() {
		return
	}
	e.ran = true

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.deps.release(e)

	f := enterFrame()
	old := f.swapListener(e)
	defer func() {
		f.swapListener(old)
		f.leave()
	}()
	e.cleanup = e.fn()
}

// Dispose stops the effect, runs its cleanup and unsubscribes it.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.deps.release(e)
}

var _ tracker = (*Effect)(nil)
