package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
)

// signalBase provides type-erased subscriber management and versioning.
// It is embedded in Signal[T] and Memo[T] to share subscription logic.
type signalBase struct {
	id uint64

	// version increases every time the owning value changes.
	version atomic.Uint64

	// subs are the listeners subscribed to this source.
	subs  []Listener
	subMu sync.RWMutex

	// refresher brings a derived source up to date before its version is
	// compared. nil for plain signals.
	refresher func()
}

// subscribe adds l unless it is already subscribed.
func (s *signalBase) subscribe(l Listener) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if !slices.Contains(s.subs, l) {
		s.subs = append(s.subs, l)
	}
}

// unsubscribe removes l. Subscriber order is not preserved.
func (s *signalBase) unsubscribe(l Listener) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if i := slices.Index(s.subs, l); i >= 0 {
		last := len(s.subs) - 1
		s.subs[i] = s.subs[last]
		s.subs = s.subs[:last]
	}
}

// subscriberCount returns the number of current subscribers.
func (s *signalBase) subscriberCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs)
}

// notifySubscribers marks all subscribers dirty, or queues them while a
// batch is open. Subscribers are copied before notification so no lock is
// held while listeners run.
func (s *signalBase) notifySubscribers() {
	s.subMu.RLock()
	subs := slices.Clone(s.subs)
	s.subMu.RUnlock()

	if f := lookupFrame(); f.batching() {
		for _, sub := range subs {
			f.queue(sub)
		}
		return
	}
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

func (s *signalBase) currentVersion() uint64 {
	return s.version.Load()
}

func (s *signalBase) refresh() {
	if s.refresher != nil {
		s.refresher()
	}
}

// Signal is a reactive value container.
// Reading a Signal's value while a Memo or Effect is computing subscribes
// that computation to future changes.
type Signal[T any] struct {
	base signalBase

	value T
	mu    sync.RWMutex

	eq equality[T]
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		base:  signalBase{id: nextID()},
		value: initial,
	}
}

// Get returns the current value and subscribes the current listener.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track after releasing the value lock.
	track(&s.base)
	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores value and notifies subscribers unless the equality policy
// reports it equal to the current value.
func (s *Signal[T]) Set(value T) {
	s.Update(func(T) T { return value })
}

// Update reads the current value, stores fn's result and notifies
// subscribers if it changed. It returns the stored value.
func (s *Signal[T]) Update(fn func(T) T) T {
	// fn runs without the lock held so it may read other reactive values.
	newValue := fn(s.Peek())

	s.mu.Lock()
	changed := !s.eq.equals(s.value, newValue)
	if changed {
		s.value = newValue
		s.base.version.Add(1)
	}
	current := s.value
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
	return current
}

// WithEquals configures a custom equality function.
// Returning true from fn suppresses notification for that write.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.eq.fn = fn
	return s
}

// AlwaysNotify disables equality checking: every write notifies subscribers,
// even when the value is unchanged.
func (s *Signal[T]) AlwaysNotify() *Signal[T] {
	s.eq.always = true
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Subscribers returns the number of listeners currently subscribed.
func (s *Signal[T]) Subscribers() int {
	return s.base.subscriberCount()
}
