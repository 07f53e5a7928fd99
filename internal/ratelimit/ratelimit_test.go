package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 12, 21, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestAllowWithinLimit(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{Window: 10 * time.Second, Max: 5}, WithClock(clock))

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "request %d should be allowed", i+1)
		clock.Advance(100 * time.Millisecond)
	}
	assert.False(t, l.Allow("1.2.3.4"), "6th request inside the window should be denied")
}

func TestAllowAgainAfterWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{Window: 10 * time.Second, Max: 5}, WithClock(clock))

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("client"))
	}
	require.False(t, l.Allow("client"))

	clock.Advance(10 * time.Second)
	assert.True(t, l.Allow("client"), "a full window after the earliest request should allow again")
}

func TestSlidingNotFixedBucket(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{Window: 10 * time.Second, Max: 2}, WithClock(clock))

	require.True(t, l.Allow("k"))  // t=0
	clock.Advance(6 * time.Second) // t=6
	require.True(t, l.Allow("k"))
	clock.Advance(5 * time.Second) // t=11: t=0 has left, t=6 is still inside
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"), "t=6, t=11, t=11 exceeds max of 2")
}

func TestDeniedRequestsStillCount(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{Window: 10 * time.Second, Max: 1}, WithClock(clock))

	require.True(t, l.Allow("k"))
	clock.Advance(9 * time.Second)
	require.False(t, l.Allow("k"))
	clock.Advance(2 * time.Second) // first request gone, denied one at t=9 remains
	assert.False(t, l.Allow("k"))
}

func TestKeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{Window: time.Minute, Max: 1}, WithClock(clock))

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("a"))
	assert.False(t, l.Allow("b"))
}

func TestDefaultsApplied(t *testing.T) {
	l := New(Config{})
	assert.Equal(t, DefaultConfig(), l.Config())
}

func TestConcurrentSameKeyNoUndercount(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{Window: time.Minute, Max: 5}, WithClock(clock))

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("burst") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), allowed.Load(), "exactly Max requests may pass under a concurrent burst")
}

func TestSweep(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	l := New(Config{Window: 10 * time.Second, Max: 5}, WithClock(clock), WithStore(store))

	l.Allow("old")
	clock.Advance(8 * time.Second)
	l.Allow("fresh")
	clock.Advance(3 * time.Second)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, store.Len())

	// A swept key starts over.
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("old"))
	}
}

func TestSweepConcurrentWithAllow(t *testing.T) {
	l := New(Config{Window: time.Millisecond, Max: 1000})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				l.Sweep()
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		l.Allow("k")
	}
	close(stop)
	wg.Wait()
}

type countingStore struct {
	*MemoryStore
	updates atomic.Int32
}

func (s *countingStore) Update(key string, fn func([]time.Time) []time.Time) int {
	s.updates.Add(1)
	return s.MemoryStore.Update(key, fn)
}

func TestInjectedStore(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore()}
	l := New(Config{Window: time.Second, Max: 1}, WithStore(store), WithClock(ClockFunc(time.Now)))

	l.Allow("x")
	l.Allow("y")
	assert.Equal(t, int32(2), store.updates.Load())
}

func TestPruneCompactsInPlace(t *testing.T) {
	base := time.Unix(0, 0)
	ts := []time.Time{base, base.Add(time.Second), base.Add(5 * time.Second)}

	out := prune(ts, base.Add(6*time.Second), 5*time.Second)
	require.Len(t, out, 1)
	assert.Equal(t, base.Add(5*time.Second), out[0])
}
