// Package types provides internal types shared across gossa packages.
package types

import (
	"cmp"
	"context"
	"log/slog"
)

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (lines, tokens, tags).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// ctx is a package-level context for logging.
var ctx = context.Background()

// Logger wraps slog.Logger with nil-safe helpers.
type Logger struct {
	L *slog.Logger
}

// Enabled returns true if logging is enabled at the given level.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.L != nil && l.L.Enabled(ctx, level)
}

// Log emits a log message if logging is enabled.
func (l *Logger) Log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.L != nil && l.L.Enabled(ctx, level) {
		l.L.LogAttrs(ctx, level, msg, attrs...)
	}
}

// TraceEnabled returns true if trace-level logging is enabled.
func (l *Logger) TraceEnabled() bool {
	return l.Enabled(LevelTrace)
}

// Trace emits a trace-level log.
func (l *Logger) Trace(msg string, attrs ...slog.Attr) {
	l.Log(LevelTrace, msg, attrs...)
}

// Component returns a child logger tagged with the component name,
// or nil when logger is nil.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("component", name))
}

// ByteOffset is a byte position in source text.
type ByteOffset uint32

// Span represents a range in source text. It never owns the text it
// refers to; resolve it against the buffer it was produced from.
type Span struct {
	Start ByteOffset // inclusive
	End   ByteOffset // exclusive
}

// NewSpan creates a new span.
func NewSpan(start, end ByteOffset) Span {
	return Span{Start: start, End: end}
}

// SpanOf creates a span from int offsets.
func SpanOf(start, end int) Span {
	return Span{Start: ByteOffset(start), End: ByteOffset(end)}
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return int(s.End - s.Start)
}

// IsEmpty returns true if the span is empty.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains reports whether offset lies within the span.
func (s Span) Contains(offset ByteOffset) bool {
	return offset >= s.Start && offset < s.End
}

// Cover returns the smallest span enclosing both s and o.
func (s Span) Cover(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// Text returns the bytes of src covered by the span as a string.
// Out-of-range spans are clamped.
func (s Span) Text(src []byte) string {
	return string(s.Bytes(src))
}

// Bytes returns the sub-slice of src covered by the span without copying.
func (s Span) Bytes(src []byte) []byte {
	start, end := int(s.Start), int(s.End)
	if end > len(src) {
		end = len(src)
	}
	if start > end {
		return nil
	}
	return src[start:end]
}

// Compare orders spans by start offset, then end offset.
func (s Span) Compare(o Span) int {
	if c := cmp.Compare(s.Start, o.Start); c != 0 {
		return c
	}
	return cmp.Compare(s.End, o.End)
}
