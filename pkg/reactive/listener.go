package reactive

// Listener is anything that can be notified when a dependency changes.
// Memos and effects implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies may have
	// changed. Memos mark themselves for a check on the next read, effects
	// schedule a re-run.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// tracker is implemented by listeners that record the sources they read.
type tracker interface {
	Listener
	addSource(source *signalBase)
}

// dependency is a source observed by a computation, together with the source
// version seen at read time.
type dependency struct {
	source  *signalBase
	version uint64
}

// dependencies is the source list shared by Memo and Effect.
type dependencies []dependency

// add records source unless it is already present.
func (d *dependencies) add(source *signalBase) {
	for _, dep := range *d {
		if dep.source == source {
			return
		}
	}
	*d = append(*d, dependency{source: source, version: source.currentVersion()})
}

// changed refreshes every source and reports whether any of them moved past
// the version recorded when it was read.
func (d dependencies) changed() bool {
	for _, dep := range d {
		dep.source.refresh()
		if dep.source.currentVersion() != dep.version {
			return true
		}
	}
	return false
}

// release unsubscribes l from every source and empties the list.
func (d *dependencies) release(l Listener) {
	for _, dep := range *d {
		dep.source.unsubscribe(l)
	}
	*d = (*d)[:0]
}

// track subscribes the current listener, if any, to source.
func track(source *signalBase) {
	listener := lookupFrame().listener
	if listener == nil {
		return
	}
	source.subscribe(listener)
	if t, ok := listener.(tracker); ok {
		t.addSource(source)
	}
}
