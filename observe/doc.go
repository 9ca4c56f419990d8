// Package observe provides structured logging and OpenTelemetry metrics for
// the cache. Telemetry is strictly best-effort: a disabled or failed
// exporter degrades to no-ops and never affects cache behavior.
package observe
