// Package ratelimit implements a per-client sliding-window request counter.
//
// Each request prunes the client's timestamps that have left the window,
// records itself, and is denied when the count in the window exceeds the
// maximum. Denied requests are recorded too, so a client that keeps
// hammering stays limited until it backs off for a full window.
package ratelimit

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Store holds the timestamp sequence per key. Update must run fn with
// exclusive access to key's sequence, store the returned sequence and
// return its length. Different keys must not block each other.
type Store interface {
	Update(key string, fn func(ts []time.Time) []time.Time) int
	Sweep(cutoff time.Time) int
}

// Config sets the window size and the maximum requests allowed in it.
type Config struct {
	Window time.Duration
	Max    int
}

// DefaultConfig allows 5 requests per 10 seconds.
func DefaultConfig() Config {
	return Config{Window: 10 * time.Second, Max: 5}
}

// Limiter decides allow/deny per client key.
type Limiter struct {
	cfg   Config
	clock Clock
	store Store
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock injects the time source.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// WithStore injects the window store.
func WithStore(s Store) Option {
	return func(l *Limiter) { l.store = s }
}

// New creates a Limiter. Zero config fields fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Limiter {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Max <= 0 {
		cfg.Max = def.Max
	}
	l := &Limiter{
		cfg:   cfg,
		clock: systemClock{},
		store: NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	now := l.clock.Now()
	n := l.store.Update(key, func(ts []time.Time) []time.Time {
		return append(prune(ts, now, l.cfg.Window), now)
	})
	return n <= l.cfg.Max
}

// Sweep drops keys with no timestamps inside the window and returns how
// many were removed.
func (l *Limiter) Sweep() int {
	return l.store.Sweep(l.clock.Now().Add(-l.cfg.Window))
}

// Config returns the limiter's effective configuration.
func (l *Limiter) Config() Config {
	return l.cfg
}

// prune drops timestamps at least window old. ts is ordered oldest first.
func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	start := 0
	for start < len(ts) && now.Sub(ts[start]) >= window {
		start++
	}
	if start == 0 {
		return ts
	}
	// Copy down so the backing array does not grow without bound.
	n := copy(ts, ts[start:])
	return ts[:n]
}

// MemoryStore keeps windows in process memory with one lock per key.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	mu         sync.Mutex
	timestamps []time.Time
	swept      bool // removed from the map; callers must fetch a fresh window
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window)}
}

func (s *MemoryStore) get(key string) *window {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[key]
	if !ok {
		w = &window{}
		s.windows[key] = w
	}
	return w
}

// Update implements Store.
func (s *MemoryStore) Update(key string, fn func([]time.Time) []time.Time) int {
	for {
		w := s.get(key)
		w.mu.Lock()
		if w.swept {
			w.mu.Unlock()
			continue
		}
		w.timestamps = fn(w.timestamps)
		n := len(w.timestamps)
		w.mu.Unlock()
		return n
	}
}

// Sweep implements Store. Keys whose newest timestamp is before cutoff are
// removed.
func (s *MemoryStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		w.mu.Lock()
		stale := len(w.timestamps) == 0 || !w.timestamps[len(w.timestamps)-1].After(cutoff)
		if stale {
			w.swept = true
		}
		w.mu.Unlock()
		if stale {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
