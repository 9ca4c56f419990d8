package cache

import "time"

// Entry is one memoized tool result.
//
// Field names match the durable store format: timestamps are epoch
// milliseconds, the TTL is milliseconds from insertion, and FileMtime is
// present only for mtime-tracked tools.
type Entry struct {
	Result    string `json:"result"`
	Timestamp int64  `json:"timestamp"`
	TTL       int64  `json:"ttl"`
	Hits      int64  `json:"hits"`
	FileMtime int64  `json:"file_mtime,omitempty"`
}

// Expired reports whether the entry's hard expiry has passed. An expired
// entry is treated as absent even while still physically present.
func (e Entry) Expired(now time.Time) bool {
	return now.UnixMilli() >= e.Timestamp+e.TTL
}

// Stats are the aggregate counters persisted alongside the entries.
// Hit counts are observability only; they never influence eviction.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// HitRate returns the hit rate as a percentage, or 0 before any lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// snapshot is the durable store document.
type snapshot struct {
	Entries map[string]Entry `json:"entries"`
	Stats   Stats            `json:"stats"`
	Updated string           `json:"updated"`
}
