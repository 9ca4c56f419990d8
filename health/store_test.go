package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/toolcache/cache"
)

func TestStoreChecker_Name(t *testing.T) {
	c := NewStoreChecker("/tmp/store.json", 100)
	if c.Name() != "cache-store" {
		t.Errorf("Name = %q", c.Name())
	}
}

func TestStoreChecker_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	res := NewStoreChecker(path, 100).Check(context.Background())
	if res.Status != StatusHealthy {
		t.Fatalf("status = %s, want healthy; cold start is fine", res.Status)
	}
}

func TestStoreChecker_ValidStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	s := cache.NewFileStore(path)
	s.Put("key-a", cache.Entry{Result: "r", Timestamp: 1, TTL: 60000})
	s.Put("key-b", cache.Entry{Result: "r", Timestamp: 2, TTL: 60000})
	s.RecordHit()
	s.RecordHit()
	s.RecordMiss()
	if err := s.Persist(); err != nil {
		t.Fatal(err)
	}

	res := NewStoreChecker(path, 100).Check(context.Background())
	if res.Status != StatusHealthy {
		t.Fatalf("status = %s (%s), want healthy", res.Status, res.Message)
	}
	if res.Details["entries"] != 2 {
		t.Errorf("entries = %v, want 2", res.Details["entries"])
	}
	if res.Details["max_entries"] != 100 {
		t.Errorf("max_entries = %v, want 100", res.Details["max_entries"])
	}
	rate, ok := res.Details["hit_rate"].(float64)
	if !ok || rate < 66.0 || rate > 67.0 {
		t.Errorf("hit_rate = %v, want ~66.7", res.Details["hit_rate"])
	}
}

func TestStoreChecker_CorruptStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := NewStoreChecker(path, 100).Check(context.Background())
	if res.Status != StatusDegraded {
		t.Fatalf("status = %s, want degraded", res.Status)
	}
}

func TestStoreChecker_UnwritableDirectory(t *testing.T) {
	// The store path's parent is a regular file, so the directory can
	// never be created.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(blocker, "store.json")
	res := NewStoreChecker(path, 100).Check(context.Background())
	if res.Status != StatusUnhealthy {
		t.Fatalf("status = %s, want unhealthy", res.Status)
	}
	if res.Error == nil {
		t.Error("unhealthy result carries no error")
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestResult_Constructors(t *testing.T) {
	before := time.Now()
	res := Healthy("ok").WithDetails(map[string]any{"k": "v"})
	if res.Status != StatusHealthy || res.Message != "ok" || res.Details["k"] != "v" {
		t.Errorf("Healthy result = %+v", res)
	}
	if res.Timestamp.Before(before) {
		t.Error("timestamp not set")
	}
}
