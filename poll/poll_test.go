package poll

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxTakeEmpty(t *testing.T) {
	box := NewMailbox[int]()
	_, ok := box.Take()
	assert.False(t, ok)
}

func TestMailboxPostThenTake(t *testing.T) {
	box := NewMailbox[string]()
	box.Post("hello")

	v, ok := box.Take()
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	// The slot is empty again after a successful take.
	_, ok = box.Take()
	assert.False(t, ok)
}

func TestMailboxLastWriteWins(t *testing.T) {
	box := NewMailbox[int]()
	box.Post(1)
	box.Post(2)

	v, ok := box.Take()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = box.Take()
	assert.False(t, ok)
}

func TestMailboxConcurrentPosters(t *testing.T) {
	box := NewMailbox[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			box.Post(n)
		}(i)
	}
	wg.Wait()

	v, ok := box.Take()
	require.True(t, ok)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 50)
}

func TestStopSignalIdempotent(t *testing.T) {
	stop := NewStopSignal()
	assert.False(t, stop.Stopped())

	stop.Stop()
	stop.Stop()
	assert.True(t, stop.Stopped())
}

func TestStopSignalWakesSleeperEarly(t *testing.T) {
	stop := NewStopSignal()

	done := make(chan time.Duration, 1)
	go func() {
		start := time.Now()
		stop.Sleep(10 * time.Second)
		done <- time.Since(start)
	}()

	time.Sleep(20 * time.Millisecond)
	stop.Stop()

	select {
	case elapsed := <-done:
		assert.Less(t, elapsed, time.Second, "sleeper must wake promptly, not after the full interval")
	case <-time.After(2 * time.Second):
		t.Fatal("sleeper never woke after stop")
	}
}

func TestStopSignalSleepCompletesWhenNotStopped(t *testing.T) {
	stop := NewStopSignal()
	assert.True(t, stop.Sleep(5*time.Millisecond))
}

func TestStopSignalSleepAfterStopReturnsImmediately(t *testing.T) {
	stop := NewStopSignal()
	stop.Stop()

	start := time.Now()
	assert.False(t, stop.Sleep(10*time.Second))
	assert.Less(t, time.Since(start), time.Second)
}

func TestSpawnCallsProducerImmediately(t *testing.T) {
	var wg sync.WaitGroup
	stop := NewStopSignal()
	box := NewMailbox[int]()

	Spawn(&wg, time.Hour, stop, box, func() (int, bool) { return 42, true })

	require.Eventually(t, func() bool {
		v, ok := box.Take()
		return ok && v == 42
	}, 2*time.Second, 5*time.Millisecond, "first poll must happen without waiting an interval")

	stop.Stop()
	wg.Wait()
}

func TestSpawnSkipsPostWhenProducerYieldsNothing(t *testing.T) {
	var wg sync.WaitGroup
	stop := NewStopSignal()
	box := NewMailbox[int]()
	box.Post(7)

	var calls atomic.Int32
	Spawn(&wg, time.Hour, stop, box, func() (int, bool) {
		calls.Add(1)
		return 0, false
	})

	require.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, time.Millisecond)

	// The last posted value survives a failed poll.
	v, ok := box.Take()
	require.True(t, ok)
	assert.Equal(t, 7, v)

	stop.Stop()
	wg.Wait()
}

func TestSpawnStopsPromptlyDuringLongInterval(t *testing.T) {
	var wg sync.WaitGroup
	stop := NewStopSignal()
	box := NewMailbox[int]()

	Spawn(&wg, time.Hour, stop, box, func() (int, bool) { return 1, true })

	time.Sleep(10 * time.Millisecond)
	start := time.Now()
	stop.Stop()
	wg.Wait()
	assert.Less(t, time.Since(start), time.Second, "poller must exit well before its interval elapses")
}

func TestSpawnRepolls(t *testing.T) {
	var wg sync.WaitGroup
	stop := NewStopSignal()
	box := NewMailbox[int]()

	var calls atomic.Int32
	Spawn(&wg, time.Millisecond, stop, box, func() (int, bool) {
		return int(calls.Add(1)), true
	})

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
	stop.Stop()
	wg.Wait()
}

func TestFetchDeliversResult(t *testing.T) {
	box := Fetch(func() string { return "preview text" })

	require.Eventually(t, func() bool {
		v, ok := box.Take()
		return ok && v == "preview text"
	}, 2*time.Second, time.Millisecond)
}

func TestFetchSupersededResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	old := Fetch(func() string {
		<-release
		return "stale"
	})
	fresh := Fetch(func() string { return "fresh" })

	require.Eventually(t, func() bool {
		v, ok := fresh.Take()
		return ok && v == "fresh"
	}, 2*time.Second, time.Millisecond)

	// Let the superseded fetch finish; its result lands in a mailbox nobody
	// reads.
	close(release)
	_ = old
}
