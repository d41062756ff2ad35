// Package poll contains the concurrency primitives behind the interactive
// picker: a single-slot mailbox for handing values from background pollers
// to the UI goroutine, a cancellable stop signal, and a scheduler that runs
// a producer on an interval.
package poll

import "sync"

// Mailbox is a single-slot, overwrite-on-post handoff point between one
// producer goroutine and one consumer. Post replaces any undelivered value
// (last write wins, no queuing); Take never blocks.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
}

// NewMailbox returns an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Post stores v, discarding any value not yet consumed.
func (m *Mailbox[T]) Post(v T) {
	m.mu.Lock()
	m.value = v
	m.full = true
	m.mu.Unlock()
}

// Take returns the pending value and clears the slot. It never blocks: when
// the lock is contended it behaves as if the mailbox were empty, so the
// consumer skips one cycle's update instead of stalling. Staleness by one
// refresh is the accepted trade for a render loop that never freezes.
func (m *Mailbox[T]) Take() (T, bool) {
	var zero T
	if !m.mu.TryLock() {
		return zero, false
	}
	defer m.mu.Unlock()
	if !m.full {
		return zero, false
	}
	v := m.value
	m.value = zero
	m.full = false
	return v, true
}
