package poll

import (
	"sync"
	"time"
)

// Spawn starts one goroutine that repeatedly calls producer and posts each
// yielded value to box, sleeping (cancellably) between calls. The first call
// happens immediately so the UI has data on first paint. A producer
// returning ok=false posts nothing, leaving the mailbox's last value
// untouched rather than flickering blank on a transient failure.
//
// The goroutine is registered on wg; callers Stop the signal and Wait on wg
// to guarantee no poller outlives the session.
func Spawn[T any](wg *sync.WaitGroup, interval time.Duration, stop *StopSignal, box *Mailbox[T], producer func() (T, bool)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			if stop.Stopped() {
				return
			}
			if v, ok := producer(); ok {
				box.Post(v)
			}
			if !stop.Sleep(interval) {
				return
			}
		}
	}()
}

// Fetch runs producer once on its own goroutine and posts the result to a
// fresh mailbox, which it returns immediately. Superseding a fetch is done
// by dropping the returned mailbox: a slow producer then posts into a slot
// nobody reads and its result is silently discarded. Fetch goroutines are
// one-shot and not joined.
func Fetch[T any](producer func() T) *Mailbox[T] {
	box := NewMailbox[T]()
	go func() {
		box.Post(producer())
	}()
	return box
}
