package cache

import (
	"os"
	"time"
)

// StatFunc resolves a file path to its current modification time. The
// default is backed by os.Stat; tests substitute their own.
type StatFunc func(path string) (time.Time, error)

// osStat is the default StatFunc.
func osStat(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Oracle decides whether an entry for a file-reading tool is still backed by
// an unchanged source file. It runs in addition to the TTL check, never
// instead of it.
type Oracle struct {
	policy Policy
	stat   StatFunc
}

// NewOracle creates an oracle over the policy's file-tool table. A nil stat
// falls back to os.Stat.
func NewOracle(policy Policy, stat StatFunc) Oracle {
	if stat == nil {
		stat = osStat
	}
	return Oracle{policy: policy, stat: stat}
}

// SourceMtime stats the source file named by the tool's input at store time.
// The second return value is false when the tool is not mtime-tracked, the
// input carries no usable path, or the stat fails; in the stat-failure case
// the caller should not cache at all, since the entry could never be
// validated later.
func (o Oracle) SourceMtime(toolName string, input any) (int64, bool) {
	path, ok := o.sourcePath(toolName, input)
	if !ok {
		return 0, false
	}
	mtime, err := o.stat(path)
	if err != nil {
		return 0, false
	}
	return mtime.UnixMilli(), true
}

// Tracked reports whether the tool's entries carry a source mtime.
func (o Oracle) Tracked(toolName string) bool {
	_, ok := o.policy.SourceParam(toolName)
	return ok
}

// Fresh reports whether the entry's source file is unchanged. Entries
// without a recorded mtime fall through to pure TTL freshness and report
// true here. A failed stat (file deleted or inaccessible) reports stale:
// missing and re-executing is safer than serving a read of a vanished file.
func (o Oracle) Fresh(e Entry, toolName string, input any) bool {
	if e.FileMtime == 0 {
		return true
	}
	path, ok := o.sourcePath(toolName, input)
	if !ok {
		return true
	}
	mtime, err := o.stat(path)
	if err != nil {
		return false
	}
	return mtime.UnixMilli() == e.FileMtime
}

// sourcePath extracts the source file path from the tool input.
func (o Oracle) sourcePath(toolName string, input any) (string, bool) {
	param, ok := o.policy.SourceParam(toolName)
	if !ok {
		return "", false
	}
	m, ok := input.(map[string]any)
	if !ok {
		return "", false
	}
	path, ok := m[param].(string)
	if !ok || path == "" {
		return "", false
	}
	return path, true
}
