package cache

import "time"

// Default bounds applied by Policy.Normalize when unset.
const (
	DefaultMaxEntries     = 100
	DefaultMaxResultBytes = 64 * 1024
)

// Policy is the static per-tool caching configuration.
//
// The cacheability decision is two-tier: a tool on the NoCache list is never
// cached, even if a TTL was mistakenly configured for it; otherwise a tool is
// cacheable exactly when it has a TTL entry. Unknown tools default to not
// cached.
//
// Policy is fixed at construction time and must not be mutated afterwards.
type Policy struct {
	// TTL maps a tool name to the freshness window applied at store time.
	// Tools absent from this map are not cacheable.
	TTL map[string]time.Duration

	// NoCache lists tools that must never be cached regardless of TTL
	// configuration. Side-effecting tools (writes, deletes, subprocess
	// spawns) belong here: caching them would report a stale "result" for
	// an operation that was never re-executed.
	NoCache []string

	// FilePathParam maps a file-reading tool name to the input field that
	// names its source file. Entries for these tools record the file's
	// mtime and are invalidated when it changes, independent of TTL.
	FilePathParam map[string]string

	// MaxEntries bounds the store size; oldest-by-insertion entries are
	// evicted past it.
	MaxEntries int

	// MaxResultBytes bounds the size of a single cacheable result. Larger
	// results are skipped, which also bounds the durable file's growth.
	MaxResultBytes int
}

// DefaultPolicy returns the caching policy for a standard coding-assistant
// tool set: file and search reads are cached briefly, web fetches a little
// longer, and every mutating tool is denied.
func DefaultPolicy() Policy {
	return Policy{
		TTL: map[string]time.Duration{
			"Read":      5 * time.Minute,
			"Grep":      2 * time.Minute,
			"Glob":      2 * time.Minute,
			"WebFetch":  10 * time.Minute,
			"WebSearch": 10 * time.Minute,
		},
		NoCache: []string{
			"Write", "Edit", "MultiEdit", "NotebookEdit",
			"Bash", "Task", "TodoWrite", "KillShell",
		},
		FilePathParam: map[string]string{
			"Read": "file_path",
		},
		MaxEntries:     DefaultMaxEntries,
		MaxResultBytes: DefaultMaxResultBytes,
	}
}

// Normalize applies default bounds for unset fields and returns the policy.
func (p Policy) Normalize() Policy {
	if p.MaxEntries <= 0 {
		p.MaxEntries = DefaultMaxEntries
	}
	if p.MaxResultBytes <= 0 {
		p.MaxResultBytes = DefaultMaxResultBytes
	}
	return p
}

// IsCacheable reports whether results for the tool may be cached.
func (p Policy) IsCacheable(toolName string) bool {
	if p.denied(toolName) {
		return false
	}
	_, ok := p.TTL[toolName]
	return ok
}

// TTLFor returns the configured TTL for the tool. The second return value is
// false when the tool is not cacheable.
func (p Policy) TTLFor(toolName string) (time.Duration, bool) {
	if p.denied(toolName) {
		return 0, false
	}
	ttl, ok := p.TTL[toolName]
	return ttl, ok
}

// SourceParam returns the input field naming the tool's source file, if the
// tool is mtime-tracked.
func (p Policy) SourceParam(toolName string) (string, bool) {
	param, ok := p.FilePathParam[toolName]
	return param, ok
}

// denied reports whether the tool is on the NoCache list. The list wins over
// any TTL entry.
func (p Policy) denied(toolName string) bool {
	for _, name := range p.NoCache {
		if name == toolName {
			return true
		}
	}
	return false
}
