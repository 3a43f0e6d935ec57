package reactive

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ids numbers every signal, memo, effect and owner.
var ids atomic.Uint64

func nextID() uint64 {
	return ids.Add(1)
}

// frame is the reactive state of one goroutine. A frame exists only while
// the goroutine is inside at least one scope (WithOwner, RunWithOwner,
// WithListener, Batch, or a memo or effect run) and is dropped when the
// outermost one returns.
type frame struct {
	id uint64

	// scopes counts the scopes currently open on this goroutine.
	scopes int

	// owner receives memos and effects created on this goroutine.
	owner *Owner

	// listener subscribes to every source read on this goroutine.
	// nil means reads are not tracked.
	listener Listener

	// depth counts open Batch calls; queued collects the listeners their
	// writes notified.
	depth  int
	queued []Listener
}

// frames maps goroutine IDs to their frame.
var frames sync.Map

// idle is what lookupFrame returns for a goroutine outside every scope.
// It is never written.
var idle frame

// goid parses the current goroutine's ID from "goroutine N [...".
func goid() uint64 {
	var buf [32]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for _, c := range buf[len("goroutine "):n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}

// lookupFrame returns the current goroutine's frame for reading. It does not
// create one.
func lookupFrame() *frame {
	if f, ok := frames.Load(goid()); ok {
		return f.(*frame)
	}
	return &idle
}

// enterFrame opens a scope on the current goroutine and returns its frame.
// Every enterFrame is paired with a deferred leave.
func enterFrame() *frame {
	id := goid()
	v, ok := frames.Load(id)
	if !ok {
		v, _ = frames.LoadOrStore(id, &frame{id: id})
	}
	f := v.(*frame)
	f.scopes++
	return f
}

// leave closes a scope opened by enterFrame.
func (f *frame) leave() {
	f.scopes--
	if f.scopes == 0 {
		frames.Delete(f.id)
	}
}

func (f *frame) swapListener(l Listener) Listener {
	old := f.listener
	f.listener = l
	return old
}

func (f *frame) swapOwner(o *Owner) *Owner {
	old := f.owner
	f.owner = o
	return old
}

func (f *frame) batching() bool {
	return f.depth > 0
}

// CurrentOwner returns the Owner active on this goroutine, or nil when called
// outside any ownership scope.
func CurrentOwner() *Owner {
	return lookupFrame().owner
}

// WithOwner runs fn with owner as the current owner.
// Listener tracking is left untouched.
func WithOwner(owner *Owner, fn func()) {
	f := enterFrame()
	old := f.swapOwner(owner)
	defer func() {
		f.swapOwner(old)
		f.leave()
	}()
	fn()
}

// RunWithOwner runs fn with owner as the current owner and no active listener,
// and returns its result. Primitives created inside fn belong to owner even
// when RunWithOwner is called from within another computation, and reads made
// by fn are not attributed to that computation.
//
// Example:
//
//	memo := reactive.RunWithOwner(root, func() *reactive.Memo[int] {
//	    return reactive.NewMemo(compute, 0)
//	})
func RunWithOwner[T any](owner *Owner, fn func() T) T {
	f := enterFrame()
	oldOwner, oldListener := f.swapOwner(owner), f.swapListener(nil)
	defer func() {
		f.swapOwner(oldOwner)
		f.swapListener(oldListener)
		f.leave()
	}()
	return fn()
}

// WithListener runs fn with l as the tracking listener.
func WithListener(l Listener, fn func()) {
	f := enterFrame()
	old := f.swapListener(l)
	defer func() {
		f.swapListener(old)
		f.leave()
	}()
	fn()
}

// Untracked runs fn without tracking signal reads as dependencies.
func Untracked(fn func()) {
	WithListener(nil, fn)
}
