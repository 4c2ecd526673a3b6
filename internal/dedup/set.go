// Package dedup tracks natural keys already seen during one ingestion run.
package dedup

import "sync"

// Set remembers keys for the lifetime of one pipeline run. It is either
// unbounded or capped with least-recently-seen eviction. Eviction can only
// let a later duplicate through; it never makes a new key look seen.
type Set struct {
	maxKeys int
	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently seen
	tail    *entry // least recently seen
	evicted int
}

type entry struct {
	key  string
	prev *entry
	next *entry
}

// New creates a Set. maxKeys <= 0 means unbounded.
func New(maxKeys int) *Set {
	return &Set{
		maxKeys: maxKeys,
		entries: make(map[string]*entry),
	}
}

// Seen reports whether key was remembered and not yet evicted.
func (s *Set) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if s.maxKeys > 0 {
		s.moveToFront(e)
	}
	return true
}

// Remember records key.
func (s *Set) Remember(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		if s.maxKeys > 0 {
			s.moveToFront(e)
		}
		return
	}

	e := &entry{key: key}
	s.entries[key] = e
	if s.maxKeys <= 0 {
		return
	}
	s.addToFront(e)
	if len(s.entries) > s.maxKeys {
		s.evictTail()
	}
}

// Len returns the number of keys currently held.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evicted returns how many keys were dropped to respect the cap.
func (s *Set) Evicted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

func (s *Set) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.unlink(e)
	s.addToFront(e)
}

func (s *Set) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Set) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Set) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.key)
	s.unlink(s.tail)
	s.evicted++
}
