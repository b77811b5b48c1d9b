package cache

import (
	"container/list"
	"math"
	"sync"
	"time"
)

// EvictFraction is the share of entries dropped when the store is full.
const EvictFraction = 0.3

// Entry is one cached result.
type Entry struct {
	Key       string
	Value     any
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (e *Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Stats counts store activity since construction or the last Clear.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Entries     int    `json:"entries"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is a bounded TTL map. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front is newest
	maxSize int
	now     func() time.Time
	stats   Stats
}

// New returns a store holding at most maxSize entries; maxSize <= 0 means
// unbounded.
func New(maxSize int, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key if it has not expired. An expired
// entry is removed and reported as a miss.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		s.stats.Misses++
		return nil, false
	}

	entry := elem.Value.(*Entry)
	if entry.expired(s.now()) {
		s.remove(elem)
		s.stats.Expirations++
		s.stats.Misses++
		return nil, false
	}

	s.stats.Hits++
	return entry.Value, true
}

// Put stores value under key for ttl. Replacing an existing key re-stamps it
// as newest. Inserting a new key into a full store first evicts the oldest
// EvictFraction of entries.
func (s *Store) Put(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*Entry)
		entry.Value = value
		entry.CreatedAt = now
		entry.ExpiresAt = now.Add(ttl)
		s.order.MoveToFront(elem)
		return
	}

	if s.maxSize > 0 && s.order.Len() >= s.maxSize {
		s.evictOldest()
	}

	entry := &Entry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.entries[key] = s.order.PushFront(entry)
}

// evictOldest drops ceil(EvictFraction * len) entries from the back. At least
// one entry is always dropped so the new one fits.
func (s *Store) evictOldest() {
	n := int(math.Ceil(float64(s.order.Len()) * EvictFraction))
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		elem := s.order.Back()
		if elem == nil {
			return
		}
		s.remove(elem)
		s.stats.Evictions++
	}
}

func (s *Store) remove(elem *list.Element) {
	s.order.Remove(elem)
	delete(s.entries, elem.Value.(*Entry).Key)
}

// Delete removes key if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.remove(elem)
	}
}

// DeleteExpired removes every expired entry and returns how many were removed.
func (s *Store) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*Entry).expired(now) {
			s.remove(elem)
			removed++
		}
		elem = prev
	}
	s.stats.Expirations += uint64(removed)
	return removed
}

// Clear removes every entry and zeroes the counters.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*list.Element)
	s.order.Init()
	s.stats = Stats{}
}

// Len returns the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	st.Entries = s.order.Len()
	return st
}
