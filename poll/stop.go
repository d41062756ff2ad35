package poll

import (
	"sync"
	"time"
)

// StopSignal is a broadcast cancellation flag with a cancellable sleep.
// Created running; Stop is idempotent and wakes all current and future
// waiters immediately.
type StopSignal struct {
	once sync.Once
	done chan struct{}
}

// NewStopSignal returns a signal in the running state.
func NewStopSignal() *StopSignal {
	return &StopSignal{done: make(chan struct{})}
}

// Stop flips the signal to stopped and wakes every waiter. Safe to call from
// any goroutine, any number of times.
func (s *StopSignal) Stop() {
	s.once.Do(func() { close(s.done) })
}

// Stopped is a cheap poll of the flag.
func (s *StopSignal) Stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done exposes the broadcast channel for select loops.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}

// Sleep blocks up to d, returning early the instant Stop is called. The
// return value is false when the sleep was interrupted, so pollers with long
// intervals exit within milliseconds of shutdown instead of an interval
// late.
func (s *StopSignal) Sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.done:
		return false
	}
}
