package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Owner is a lifetime scope for reactive primitives. Memos and effects
// created while an Owner is current belong to it and are disposed with it.
//
// Owners form a tree. Values set on an Owner are visible to its descendants
// through GetValue, which is how a scope publishes itself to code running
// beneath it.
type Owner struct {
	id     uint64
	parent *Owner

	// mu guards every field below.
	mu       sync.Mutex
	children []*Owner
	effects  []*Effect
	cleanups []func()
	queue    []*Effect
	values   map[any]any

	disposed atomic.Bool
}

// NewOwner creates an Owner under parent, or a root Owner when parent is nil.
// A child created under a disposed parent is disposed immediately.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{id: nextID(), parent: parent}
	if parent == nil {
		return o
	}

	parent.mu.Lock()
	if parent.disposed.Load() {
		parent.mu.Unlock()
		o.disposed.Store(true)
		return o
	}
	parent.children = append(parent.children, o)
	parent.mu.Unlock()
	return o
}

// ID returns the Owner's unique identifier.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether Dispose has been called.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// OnCleanup registers fn to run when the Owner is disposed. Cleanups run in
// reverse registration order. On a disposed Owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if !o.locked(func() { o.cleanups = append(o.cleanups, fn) }) {
		fn()
	}
}

// SetValue stores a value visible to this Owner and its descendants.
func (o *Owner) SetValue(key, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// GetValue returns the value stored under key on the nearest Owner, starting
// from o and walking up, that has one. It returns nil if none does.
func (o *Owner) GetValue(key any) any {
	for cur := o; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		v, ok := cur.values[key]
		cur.mu.Unlock()
		if ok {
			return v
		}
	}
	return nil
}

// RunPendingEffects runs the effects scheduled on this Owner, then those of
// its descendants.
func (o *Owner) RunPendingEffects() {
	var queue []*Effect
	var children []*Owner
	if !o.locked(func() {
		queue, o.queue = o.queue, nil
		children = slices.Clone(o.children)
	}) {
		return
	}

	for _, e := range queue {
		if e.pending.Load() {
			e.run()
		}
	}
	for _, child := range children {
		child.RunPendingEffects()
	}
}

// HasPendingEffects reports whether this Owner or a descendant has effects
// waiting for RunPendingEffects.
func (o *Owner) HasPendingEffects() bool {
	pending := false
	var children []*Owner
	o.locked(func() {
		pending = len(o.queue) > 0
		children = slices.Clone(o.children)
	})
	if pending {
		return true
	}
	return slices.ContainsFunc(children, (*Owner).HasPendingEffects)
}

// Dispose tears the Owner down: children first, most recent first, then its
// effects, then its cleanups in reverse order. The Owner is detached from its
// parent. Dispose is idempotent.
func (o *Owner) Dispose() {
	o.mu.Lock()
	if o.disposed.Swap(true) {
		o.mu.Unlock()
		return
	}
	children, effects, cleanups := o.children, o.effects, o.cleanups
	o.children, o.effects, o.cleanups, o.queue = nil, nil, nil, nil
	o.mu.Unlock()

	if o.parent != nil {
		o.parent.locked(func() {
			o.parent.children = slices.DeleteFunc(o.parent.children, func(c *Owner) bool { return c == o })
		})
	}

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for _, e := range effects {
		e.Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (o *Owner) registerEffect(e *Effect) {
	o.locked(func() { o.effects = append(o.effects, e) })
}

func (o *Owner) scheduleEffect(e *Effect) {
	o.locked(func() { o.queue = append(o.queue, e) })
}

// locked runs fn under o.mu unless o is disposed, and reports whether it ran.
func (o *Owner) locked(fn func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed.Load() {
		return false
	}
	fn()
	return true
}
