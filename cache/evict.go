package cache

import "time"

// Evict enforces freshness and the store's capacity bound in two passes.
//
// Pass 1 removes every expired entry. Pass 2 removes the oldest-by-insertion
// entry until the store holds at most maxEntries; ties on identical
// timestamps break by lexical key order, so the sweep is deterministic.
//
// This is insertion-order eviction, not LRU: hit counts and access recency
// are deliberately not eviction criteria. Both passes strictly shrink the
// store, so Evict always terminates. Returns the number of entries removed,
// which is also added to the store's eviction counter.
func Evict(s Store, maxEntries int, now time.Time) int {
	evicted := 0

	for _, key := range s.Keys() {
		e, ok := s.Get(key)
		if !ok {
			continue
		}
		if e.Expired(now) {
			s.Remove(key)
			s.RecordEviction()
			evicted++
		}
	}

	for s.Len() > maxEntries {
		oldest := ""
		var oldestAt int64
		// Keys are lexically ordered, so the first entry seen at the
		// minimal timestamp wins ties.
		for _, key := range s.Keys() {
			e, ok := s.Get(key)
			if !ok {
				continue
			}
			if oldest == "" || e.Timestamp < oldestAt {
				oldest = key
				oldestAt = e.Timestamp
			}
		}
		if oldest == "" {
			break
		}
		s.Remove(oldest)
		s.RecordEviction()
		evicted++
	}

	return evicted
}
