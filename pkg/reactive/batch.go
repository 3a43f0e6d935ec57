package reactive

// Batch defers notifications until fn returns. Every listener a write inside
// fn would have notified is marked dirty once, after the outermost Batch on
// this goroutine completes.
//
// Example:
//
//	reactive.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
func Batch(fn func()) {
	f := enterFrame()
	f.depth++
	defer func() {
		f.depth--
		if f.depth == 0 {
			f.flush()
		}
		f.leave()
	}()
	fn()
}

// queue records l for notification when the open batch completes.
func (f *frame) queue(l Listener) {
	f.queued = append(f.queued, l)
}

// flush marks each queued listener dirty once.
func (f *frame) flush() {
	queued := f.queued
	f.queued = nil

	seen := make(map[Listener]struct{}, len(queued))
	for _, l := range queued {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		l.MarkDirty()
	}
}
