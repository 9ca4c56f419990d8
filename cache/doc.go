// Package cache provides deterministic, file-backed memoization for tool
// executions.
//
// A caller issues a PreCheck before running a named tool and a PostStore
// after running it. Entries carry a per-tool TTL from a static Policy,
// file-reading tools are additionally invalidated when the source file's
// mtime changes, and the store is bounded by an insertion-order eviction
// engine. Persistence is a single JSON document replaced atomically on
// every mutation, so a crash mid-write never corrupts the previous state.
//
// The cache is strictly an optimization layer: every failure mode (missing
// store file, corrupt store file, stat failure, unwritable directory)
// degrades to a miss or a skip and is never surfaced as an error to the
// caller.
package cache
