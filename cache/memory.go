package cache

import "sort"

// MemoryStore is an ephemeral Store with no durability. It backs tests and
// orchestrators that want memoization without a cache file; Persist is a
// no-op that never fails.
type MemoryStore struct {
	entries map[string]Entry
	stats   Stats
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Get returns the entry for key, if present.
func (s *MemoryStore) Get(key string) (Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Put inserts or replaces the entry for key.
func (s *MemoryStore) Put(key string, e Entry) {
	s.entries[key] = e
}

// Remove deletes the entry for key.
func (s *MemoryStore) Remove(key string) {
	delete(s.entries, key)
}

// Len returns the current entry count.
func (s *MemoryStore) Len() int {
	return len(s.entries)
}

// Keys returns all entry keys in lexical order.
func (s *MemoryStore) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns a copy of the aggregate counters with Size refreshed.
func (s *MemoryStore) Stats() Stats {
	st := s.stats
	st.Size = len(s.entries)
	return st
}

// RecordHit bumps the hit counter.
func (s *MemoryStore) RecordHit() { s.stats.Hits++ }

// RecordMiss bumps the miss counter.
func (s *MemoryStore) RecordMiss() { s.stats.Misses++ }

// RecordEviction bumps the eviction counter.
func (s *MemoryStore) RecordEviction() { s.stats.Evictions++ }

// Reset drops all entries and zeroes the stats.
func (s *MemoryStore) Reset() {
	s.entries = make(map[string]Entry)
	s.stats = Stats{}
}

// Persist is a no-op for the in-memory store.
func (s *MemoryStore) Persist() error {
	return nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
