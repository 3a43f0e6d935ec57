// Package reactive provides the fine-grained reactive engine that pebble cells
// are built on.
//
// Dependencies are tracked automatically at runtime: reading a Signal or Memo
// while a Memo or Effect is computing subscribes that computation to the
// value. Memos are lazy and glitch-free; a change marks downstream memos as
// needing a check, and a read verifies source versions before deciding to
// recompute, so each memo recomputes at most once per actual change.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := reactive.NewSignal(0)
//	count.Get()   // read (subscribes the current listener)
//	count.Set(5)  // write (notifies subscribers if the value changed)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation that receives its previous value:
//
//	doubled := reactive.NewMemo(func(prev int) int { return count.Get() * 2 }, 0)
//	doubled.Get()
//
// Effect runs side effects when dependencies change. Effects are scheduled on
// their Owner and flushed by Owner.RunPendingEffects:
//
//	reactive.CreateEffect(func() reactive.Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//
// # Ownership
//
// An Owner is a lifetime scope. Memos and effects created while an Owner is
// current are detached when it is disposed. RunWithOwner makes an Owner current
// for the duration of a call, independent of whatever computation is running
// at the call site.
//
// # Thread Safety
//
// The tracking context (current owner, current listener, batch depth) is kept
// per goroutine. A reactive graph is meant to be driven by one goroutine at a
// time; callers that share a graph across goroutines serialize access
// themselves.
package reactive
