package health

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonwraymond/toolcache/cache"
)

// StoreChecker inspects the cache's backing file.
//
// Outcomes:
//   - missing file: healthy (cold start is the designed recovery path)
//   - unparsable file: degraded (the cache silently resets; an operator may
//     still want to know the previous contents were lost)
//   - unwritable directory: unhealthy (no store mutation can ever persist)
//   - parsable: healthy, with entry count and hit rate in the details
type StoreChecker struct {
	path       string
	maxEntries int
}

// NewStoreChecker creates a checker for the store file at path.
func NewStoreChecker(path string, maxEntries int) *StoreChecker {
	return &StoreChecker{path: path, maxEntries: maxEntries}
}

// Name returns the name of this checker.
func (c *StoreChecker) Name() string {
	return "cache-store"
}

// Check performs the health check.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if err := c.writable(); err != nil {
		return Unhealthy("store directory is not writable", err)
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Healthy("store not yet created")
		}
		return Unhealthy("store file is not readable", err)
	}

	var snap struct {
		Entries map[string]cache.Entry `json:"entries"`
		Stats   cache.Stats            `json:"stats"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return Degraded("store file is unparsable and will reset on next write")
	}

	details := map[string]any{
		"entries":     len(snap.Entries),
		"max_entries": c.maxEntries,
		"hit_rate":    snap.Stats.HitRate(),
		"evictions":   snap.Stats.Evictions,
		"bytes":       len(data),
	}
	return Healthy(fmt.Sprintf("%d entries", len(snap.Entries))).WithDetails(details)
}

// writable verifies the store directory accepts new files, creating it when
// absent the same way the store itself would.
func (c *StoreChecker) writable() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".health.*.probe")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// Ensure StoreChecker implements Checker
var _ Checker = (*StoreChecker)(nil)
