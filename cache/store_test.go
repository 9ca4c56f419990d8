package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

// TestFileStore_RoundTrip verifies persist followed by a fresh load yields
// identical entries and stats.
func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s := NewFileStore(path)
	s.Put("key-a", Entry{Result: "alpha", Timestamp: 1000, TTL: 300000, Hits: 2})
	s.Put("key-b", Entry{Result: "beta", Timestamp: 2000, TTL: 60000, FileMtime: 1234})
	s.RecordHit()
	s.RecordHit()
	s.RecordMiss()
	s.RecordEviction()

	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded := NewFileStore(path)
	if loaded.Len() != 2 {
		t.Fatalf("loaded Len = %d, want 2", loaded.Len())
	}
	for _, key := range []string{"key-a", "key-b"} {
		want, _ := s.Get(key)
		got, ok := loaded.Get(key)
		if !ok {
			t.Fatalf("loaded store missing %q", key)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("entry %q = %+v, want %+v", key, got, want)
		}
	}
	if got, want := loaded.Stats(), s.Stats(); got != want {
		t.Errorf("loaded stats = %+v, want %+v", got, want)
	}
}

// TestFileStore_ColdStart verifies missing and corrupt files both initialize
// an empty store without error.
func TestFileStore_ColdStart(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
		if s.Len() != 0 {
			t.Errorf("Len = %d, want 0", s.Len())
		}
		if s.Stats() != (Stats{}) {
			t.Errorf("stats = %+v, want zeroed", s.Stats())
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		s := NewFileStore(path)
		if s.Len() != 0 {
			t.Errorf("Len = %d, want 0", s.Len())
		}

		// The corrupt file is replaced on the next successful persist.
		s.Put("k", Entry{Result: "v", Timestamp: 1, TTL: 1000})
		if err := s.Persist(); err != nil {
			t.Fatalf("Persist over corrupt file: %v", err)
		}
		if reloaded := NewFileStore(path); reloaded.Len() != 1 {
			t.Errorf("reloaded Len = %d, want 1", reloaded.Len())
		}
	})
}

// TestFileStore_CrashSafety simulates a persist interrupted after the temp
// write but before the rename: the original file must stay fully parsable.
func TestFileStore_CrashSafety(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	s := NewFileStore(path)
	s.Put("survivor", Entry{Result: "good", Timestamp: 1, TTL: 1000})
	if err := s.Persist(); err != nil {
		t.Fatal(err)
	}

	// A crashed write leaves only an orphaned temp file behind.
	tmp, err := os.CreateTemp(dir, "store.json.*.tmp")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.Write([]byte(`{"entries": {"half-writ`)); err != nil {
		t.Fatal(err)
	}
	tmp.Close()

	loaded := NewFileStore(path)
	if _, ok := loaded.Get("survivor"); !ok {
		t.Error("original store lost after interrupted write")
	}
}

// TestFileStore_PersistCreatesDir verifies the store directory is created on
// demand.
func TestFileStore_PersistCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "store.json")
	s := NewFileStore(path)
	s.Put("k", Entry{Result: "v", Timestamp: 1, TTL: 1})
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("store file not created: %v", err)
	}
}

// TestFileStore_PersistFailure verifies an unwritable location surfaces an
// error instead of panicking or corrupting anything.
func TestFileStore_PersistFailure(t *testing.T) {
	// Parent is a regular file, so MkdirAll must fail.
	parent := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(filepath.Join(parent, "store.json"))
	s.Put("k", Entry{Result: "v"})
	if err := s.Persist(); err == nil {
		t.Error("Persist into file-parent succeeded, want error")
	}
}

// TestFileStore_DurableFormat pins the on-disk field names for compatibility
// with existing cache files.
func TestFileStore_DurableFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s := NewFileStore(path)
	s.Put("abc123", Entry{Result: "hello", Timestamp: 1700000000000, TTL: 300000, Hits: 1, FileMtime: 1699999999000})
	s.RecordHit()
	s.RecordMiss()
	if err := s.Persist(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("store file not parsable: %v", err)
	}

	for _, field := range []string{"entries", "stats", "updated"} {
		if _, ok := doc[field]; !ok {
			t.Errorf("store document missing %q", field)
		}
	}
	entry := doc["entries"].(map[string]any)["abc123"].(map[string]any)
	for _, field := range []string{"result", "timestamp", "ttl", "hits", "file_mtime"} {
		if _, ok := entry[field]; !ok {
			t.Errorf("entry missing %q", field)
		}
	}
	stats := doc["stats"].(map[string]any)
	for _, field := range []string{"hits", "misses", "evictions", "size"} {
		if _, ok := stats[field]; !ok {
			t.Errorf("stats missing %q", field)
		}
	}
}

// TestStore_Keys verifies lexical ordering for both implementations.
func TestStore_Keys(t *testing.T) {
	stores := map[string]Store{
		"file":   NewFileStore(filepath.Join(t.TempDir(), "store.json")),
		"memory": NewMemoryStore(),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"zz", "aa", "mm"} {
				s.Put(k, Entry{})
			}
			keys := s.Keys()
			if !sort.StringsAreSorted(keys) {
				t.Errorf("Keys() = %v, want sorted", keys)
			}
			if len(keys) != 3 {
				t.Errorf("len(Keys()) = %d, want 3", len(keys))
			}
		})
	}
}

// TestMemoryStore_Basics covers the ephemeral implementation.
func TestMemoryStore_Basics(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty store reported a hit")
	}

	s.Put("k", Entry{Result: "v", Timestamp: 5, TTL: 10})
	if e, ok := s.Get("k"); !ok || e.Result != "v" {
		t.Errorf("Get(k) = %+v, %v", e, ok)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	if err := s.Persist(); err != nil {
		t.Errorf("Persist: %v", err)
	}

	s.Remove("k")
	s.Remove("k") // idempotent
	if s.Len() != 0 {
		t.Errorf("Len after Remove = %d, want 0", s.Len())
	}

	s.RecordHit()
	s.RecordMiss()
	s.Reset()
	if s.Stats() != (Stats{}) {
		t.Errorf("stats after Reset = %+v, want zeroed", s.Stats())
	}
}

func TestStats_HitRate(t *testing.T) {
	if got := (Stats{}).HitRate(); got != 0 {
		t.Errorf("HitRate of empty stats = %f, want 0", got)
	}
	if got := (Stats{Hits: 3, Misses: 1}).HitRate(); got != 75 {
		t.Errorf("HitRate = %f, want 75", got)
	}
}
