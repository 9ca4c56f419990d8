package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/toolcache/observe"
)

// Skip reasons reported by PostStore.
const (
	SkipNotCacheable = "not_cacheable"
	SkipOversize     = "oversize"
	SkipKeyError     = "key_error"
	SkipStatError    = "stat_error"
	SkipPersistError = "persist_error"
)

// PreCheckResult is the outcome of a cache lookup.
type PreCheckResult struct {
	Hit      bool
	Result   string
	HitCount int64
}

// PostStoreResult is the outcome of a store attempt. Reason is empty when
// Stored is true.
type PostStoreResult struct {
	Stored bool
	Reason string
}

// Controller is the orchestration entry point for the two-phase protocol:
// PreCheck before a tool runs, PostStore after it. One Controller owns one
// Store; construct it once at startup with injected configuration and pass
// the instance to every call site.
//
// Contract:
//   - Concurrency: safe for concurrent use. The full load→mutate→persist
//     cycle of each operation runs under a single lock, so two concurrent
//     stores cannot lose each other's entries.
//   - Errors: never propagates an error past its boundary. Storage or stat
//     failures degrade to miss / skip; the only caller-visible signal of
//     trouble is a lower hit rate.
type Controller struct {
	mu      sync.Mutex
	store   Store
	policy  Policy
	keyer   Keyer
	oracle  Oracle
	now     func() time.Time
	logger  observe.Logger
	metrics observe.Metrics
}

// Option configures a Controller.
type Option func(*Controller)

// WithKeyer overrides the key derivation strategy.
func WithKeyer(k Keyer) Option {
	return func(c *Controller) { c.keyer = k }
}

// WithClock overrides the time source. Tests use this to simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithStat overrides the file stat used for mtime invalidation.
func WithStat(stat StatFunc) Option {
	return func(c *Controller) { c.oracle.stat = stat }
}

// WithLogger attaches a structured logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics attaches cache metrics.
func WithMetrics(m observe.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// NewController creates a Controller over the given store and policy.
func NewController(store Store, policy Policy, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		policy:  policy.Normalize(),
		keyer:   NewDefaultKeyer(),
		now:     time.Now,
		logger:  observe.NopLogger(),
		metrics: observe.NopMetrics(),
	}
	c.oracle = NewOracle(c.policy, nil)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cacheable reports whether the tool's results may be cached at all.
// Middleware uses this to keep side-effecting tools out of request
// deduplication.
func (c *Controller) Cacheable(toolName string) bool {
	return c.policy.IsCacheable(toolName)
}

// PreCheck consults the cache before a tool execution.
//
// Non-cacheable tools miss immediately without touching the store. A present
// entry only hits when both its TTL and its source mtime (for mtime-tracked
// tools) check out; stale entries are left in place for the next eviction
// sweep rather than deleted eagerly. A hit bumps the entry's hit count and
// persists the store so the count survives restarts.
func (c *Controller) PreCheck(ctx context.Context, toolName string, input any) PreCheckResult {
	if !c.policy.IsCacheable(toolName) {
		return PreCheckResult{}
	}

	key, err := c.keyer.Key(toolName, input)
	if err != nil {
		c.logger.Warn(ctx, "cache key derivation failed",
			observe.Field{Key: "tool", Value: toolName},
			observe.Field{Key: "error", Value: err.Error()})
		return PreCheckResult{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store.Get(key)
	now := c.now()
	if !ok || entry.Expired(now) || !c.oracle.Fresh(entry, toolName, input) {
		c.store.RecordMiss()
		c.metrics.RecordLookup(ctx, toolName, false)
		c.logger.Debug(ctx, "cache miss",
			observe.Field{Key: "tool", Value: toolName},
			observe.Field{Key: "key", Value: ShortKey(key)})
		return PreCheckResult{}
	}

	entry.Hits++
	c.store.Put(key, entry)
	c.store.RecordHit()
	if err := c.store.Persist(); err != nil {
		// The hit itself is still valid; only the updated count may be
		// lost across a restart.
		c.logger.Warn(ctx, "cache persist failed on hit",
			observe.Field{Key: "tool", Value: toolName},
			observe.Field{Key: "error", Value: err.Error()})
	}
	c.metrics.RecordLookup(ctx, toolName, true)
	c.logger.Debug(ctx, "cache hit",
		observe.Field{Key: "tool", Value: toolName},
		observe.Field{Key: "key", Value: ShortKey(key)},
		observe.Field{Key: "hits", Value: entry.Hits})

	return PreCheckResult{Hit: true, Result: entry.Result, HitCount: entry.Hits}
}

// PostStore records a tool result after execution. Eviction runs after the
// put, never before, so a store operation cannot evict its own entry.
func (c *Controller) PostStore(ctx context.Context, toolName string, input any, result string) PostStoreResult {
	ttl, ok := c.policy.TTLFor(toolName)
	if !ok {
		c.metrics.RecordStore(ctx, toolName, false, SkipNotCacheable)
		return PostStoreResult{Reason: SkipNotCacheable}
	}

	if len(result) > c.policy.MaxResultBytes {
		c.metrics.RecordStore(ctx, toolName, false, SkipOversize)
		c.logger.Debug(ctx, "cache store skipped, result too large",
			observe.Field{Key: "tool", Value: toolName},
			observe.Field{Key: "bytes", Value: len(result)})
		return PostStoreResult{Reason: SkipOversize}
	}

	key, err := c.keyer.Key(toolName, input)
	if err != nil {
		c.metrics.RecordStore(ctx, toolName, false, SkipKeyError)
		c.logger.Warn(ctx, "cache key derivation failed",
			observe.Field{Key: "tool", Value: toolName},
			observe.Field{Key: "error", Value: err.Error()})
		return PostStoreResult{Reason: SkipKeyError}
	}

	entry := Entry{
		Result:    result,
		Timestamp: c.now().UnixMilli(),
		TTL:       ttl.Milliseconds(),
	}
	if c.oracle.Tracked(toolName) {
		mtime, ok := c.oracle.SourceMtime(toolName, input)
		if !ok {
			// Without a recorded mtime the entry could never be
			// validated against the source file again.
			c.metrics.RecordStore(ctx, toolName, false, SkipStatError)
			return PostStoreResult{Reason: SkipStatError}
		}
		entry.FileMtime = mtime
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Put(key, entry)
	if n := Evict(c.store, c.policy.MaxEntries, c.now()); n > 0 {
		c.metrics.RecordEvictions(ctx, int64(n))
		c.logger.Debug(ctx, "cache evicted entries",
			observe.Field{Key: "count", Value: n})
	}
	if err := c.store.Persist(); err != nil {
		c.metrics.RecordStore(ctx, toolName, false, SkipPersistError)
		c.logger.Warn(ctx, "cache persist failed",
			observe.Field{Key: "tool", Value: toolName},
			observe.Field{Key: "error", Value: err.Error()})
		return PostStoreResult{Reason: SkipPersistError}
	}

	c.metrics.RecordStore(ctx, toolName, true, "")
	c.logger.Debug(ctx, "cache stored",
		observe.Field{Key: "tool", Value: toolName},
		observe.Field{Key: "key", Value: ShortKey(key)},
		observe.Field{Key: "ttl_ms", Value: entry.TTL})
	return PostStoreResult{Stored: true}
}

// Stats returns the aggregate counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Stats()
}

// Clear drops all entries and stats and persists the empty store.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Reset()
	return c.store.Persist()
}
