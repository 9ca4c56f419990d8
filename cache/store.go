package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Store is the key→entry mapping plus its aggregate stats.
//
// Contract:
//   - Concurrency: implementations are NOT safe for concurrent use; the
//     Controller serializes every load→mutate→persist cycle under its lock.
//   - Durability: Persist must replace the backing file atomically so that a
//     crash mid-write never leaves it unparsable. Losing the most recent
//     update is acceptable; losing the whole store is not.
type Store interface {
	// Get returns the entry for key, if present. Expiry is not checked
	// here; masking expired entries is the Controller's job.
	Get(key string) (Entry, bool)

	// Put inserts or replaces the entry for key.
	Put(key string, e Entry)

	// Remove deletes the entry for key. Idempotent.
	Remove(key string)

	// Len returns the current entry count.
	Len() int

	// Keys returns all entry keys in lexical order.
	Keys() []string

	// Stats returns a copy of the aggregate counters with Size refreshed.
	Stats() Stats

	// RecordHit, RecordMiss and RecordEviction bump the aggregate counters.
	RecordHit()
	RecordMiss()
	RecordEviction()

	// Reset drops all entries and zeroes the stats.
	Reset()

	// Persist writes the full store back to durable storage.
	Persist() error
}

// FileStore is a Store persisted as a single JSON document. The whole
// document is loaded at construction and rewritten on every Persist; at the
// intended scale (at most a few hundred entries) that is cheaper than it
// sounds and keeps recovery trivial.
type FileStore struct {
	path    string
	entries map[string]Entry
	stats   Stats
}

// NewFileStore loads the store at path. A missing or unparsable file yields
// an empty store with zeroed stats (cold start); corruption must never crash
// the caller, and the bad file is replaced on the next successful Persist.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path, entries: make(map[string]Entry)}
	s.load()
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return
	}
	if snap.Entries != nil {
		s.entries = snap.Entries
	}
	s.stats = snap.Stats
}

// Get returns the entry for key, if present.
func (s *FileStore) Get(key string) (Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Put inserts or replaces the entry for key.
func (s *FileStore) Put(key string, e Entry) {
	s.entries[key] = e
}

// Remove deletes the entry for key.
func (s *FileStore) Remove(key string) {
	delete(s.entries, key)
}

// Len returns the current entry count.
func (s *FileStore) Len() int {
	return len(s.entries)
}

// Keys returns all entry keys in lexical order.
func (s *FileStore) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns a copy of the aggregate counters with Size refreshed.
func (s *FileStore) Stats() Stats {
	st := s.stats
	st.Size = len(s.entries)
	return st
}

// RecordHit bumps the hit counter.
func (s *FileStore) RecordHit() { s.stats.Hits++ }

// RecordMiss bumps the miss counter.
func (s *FileStore) RecordMiss() { s.stats.Misses++ }

// RecordEviction bumps the eviction counter.
func (s *FileStore) RecordEviction() { s.stats.Evictions++ }

// Reset drops all entries and zeroes the stats.
func (s *FileStore) Reset() {
	s.entries = make(map[string]Entry)
	s.stats = Stats{}
}

// Persist writes the full store to the backing file via a temp file and an
// atomic rename. If the process dies after the temp write but before the
// rename, the previous file is untouched.
func (s *FileStore) Persist() error {
	snap := snapshot{
		Entries: s.entries,
		Stats:   s.Stats(),
		Updated: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)
