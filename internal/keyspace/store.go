package keyspace

import (
	"sync"
	"sync/atomic"
	"time"
)

// Entry is one stored value. ExpiresAt is an absolute epoch-millisecond
// deadline; zero means the entry never expires.
type Entry struct {
	Value     []byte
	ExpiresAt int64
}

// expired reports whether the entry's deadline has passed.
func (e Entry) expired(nowMillis int64) bool {
	return e.ExpiresAt != 0 && e.ExpiresAt <= nowMillis
}

// Stats are the store's atomic counters, exported for the metrics
// collector. They are updated outside the keyspace lock.
type Stats struct {
	Hits    atomic.Uint64
	Misses  atomic.Uint64
	Sets    atomic.Uint64
	Expired atomic.Uint64
}

// Store is the shared keyspace: a map guarded by one coarse mutex. Lock
// hold time is a single lookup-and-optionally-insert; it never spans
// parsing, encoding, or I/O.
//
// Expired entries linger until the same key is written again or the
// process exits. That unbounded retention is the documented cost of the
// lazy-expiry policy.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry

	stats Stats

	// now returns the current epoch milliseconds; overridable in tests.
	now func() int64
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the store's millisecond clock.
func WithClock(now func() int64) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]Entry),
		now:     func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the live value for key. A missing key and an expired entry
// are both reported as absent; the expired entry is left in place for
// the next write to reclaim.
func (s *Store) Get(key string) ([]byte, bool) {
	nowMillis := s.now()

	s.mu.Lock()
	entry, ok := s.entries[key]
	s.mu.Unlock()

	if !ok {
		s.stats.Misses.Add(1)
		return nil, false
	}
	if entry.expired(nowMillis) {
		s.stats.Expired.Add(1)
		s.stats.Misses.Add(1)
		return nil, false
	}
	s.stats.Hits.Add(1)
	return entry.Value, true
}

// Set writes value under key with the given time-to-live (zero means no
// expiry) and returns the previous live value, if any. The read of the
// old entry and the write of the new one happen under one lock
// acquisition, so concurrent SETs to the same key linearize and the
// returned previous value is exactly the entry the swap displaced.
func (s *Store) Set(key string, value []byte, ttl time.Duration) (prev []byte, hadPrev bool) {
	nowMillis := s.now()

	var expiresAt int64
	if ttl > 0 {
		expiresAt = nowMillis + ttl.Milliseconds()
	}

	s.mu.Lock()
	old, existed := s.entries[key]
	s.entries[key] = Entry{Value: value, ExpiresAt: expiresAt}
	s.mu.Unlock()

	s.stats.Sets.Add(1)
	if !existed {
		return nil, false
	}
	if old.expired(nowMillis) {
		s.stats.Expired.Add(1)
		return nil, false
	}
	return old.Value, true
}

// Len returns the number of entries currently held, expired stragglers
// included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats exposes the store's counters.
func (s *Store) Stats() *Stats {
	return &s.stats
}
