package observe

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

// Logger is a minimal structured logging interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// With returns a logger that attaches the fields to every record.
	With(fields ...Field) Logger
}

// jsonLogger writes one JSON object per record.
type jsonLogger struct {
	level  LogLevel
	writer io.Writer
	mu     *sync.Mutex
	base   []Field
}

// NewLogger creates a structured logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a structured logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &jsonLogger{
		level:  ParseLogLevel(level),
		writer: w,
		mu:     &sync.Mutex{},
	}
}

// With returns a logger with the fields attached to every record. The
// returned logger shares the parent's writer and lock.
func (l *jsonLogger) With(fields ...Field) Logger {
	base := make([]Field, 0, len(l.base)+len(fields))
	base = append(base, l.base...)
	base = append(base, fields...)
	return &jsonLogger{level: l.level, writer: l.writer, mu: l.mu, base: base}
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields)
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(LevelError, msg, fields)
}

func (l *jsonLogger) log(level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(l.base)+len(fields)+3)
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	for _, f := range l.base {
		entry[f.Key] = redact(f)
	}
	for _, f := range fields {
		entry[f.Key] = redact(f)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return // Silently drop malformed records
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

// redactedKeys are fields whose values never reach the log output. Tool
// inputs and results may hold file contents or credentials.
var redactedKeys = map[string]bool{
	"input":   true,
	"result":  true,
	"secret":  true,
	"token":   true,
	"api_key": true,
}

func redact(f Field) any {
	if redactedKeys[f.Key] {
		return "[REDACTED]"
	}
	return f.Value
}

// nopLogger discards everything.
type nopLogger struct{}

// NopLogger returns a logger that discards all records.
func NopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (nopLogger) Error(ctx context.Context, msg string, fields ...Field) {}
func (nopLogger) With(fields ...Field) Logger                            { return nopLogger{} }

// Ensure both implementations satisfy Logger
var (
	_ Logger = (*jsonLogger)(nil)
	_ Logger = nopLogger{}
)
