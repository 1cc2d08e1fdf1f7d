// Package logging builds the slog logger used by the gossa command: a
// text or JSON handler on stderr plus an optional rotating JSON log file.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"github.com/gossa/gossa/internal/types"
)

// Options selects level, console format and file output.
type Options struct {
	Level     string // trace, debug, info, warn, error; empty disables console output
	Format    string // text or json
	AddSource bool
	File      string // rotated JSON log, empty for none
}

// FromEnv reads GOSSA_LOG_LEVEL, GOSSA_LOG_FORMAT, GOSSA_LOG_SOURCE and
// GOSSA_LOG_FILE.
func FromEnv() Options {
	return Options{
		Level:     os.Getenv("GOSSA_LOG_LEVEL"),
		Format:    getenv("GOSSA_LOG_FORMAT", "text"),
		AddSource: strings.EqualFold(os.Getenv("GOSSA_LOG_SOURCE"), "true"),
		File:      os.Getenv("GOSSA_LOG_FILE"),
	}
}

// Merge returns o with the non-empty fields of other applied on top.
func (o Options) Merge(other Options) Options {
	if other.Level != "" {
		o.Level = other.Level
	}
	if other.Format != "" {
		o.Format = other.Format
	}
	if other.File != "" {
		o.File = other.File
	}
	o.AddSource = o.AddSource || other.AddSource
	return o
}

// New builds a logger writing to w. It returns a nil logger when neither
// a level nor a file is set, which callers pass straight to
// gossa.WithLogger to disable logging. The closer releases the log file
// and is never nil.
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	var handlers []slog.Handler
	closer := io.Closer(nopCloser{})

	level := slog.LevelInfo
	if opts.Level != "" {
		var err error
		if level, err = ParseLevel(opts.Level); err != nil {
			return nil, closer, err
		}
		ho := &slog.HandlerOptions{Level: level, AddSource: opts.AddSource, ReplaceAttr: levelNames}
		switch strings.ToLower(strings.TrimSpace(opts.Format)) {
		case "", "text", "console":
			handlers = append(handlers, slog.NewTextHandler(w, ho))
		case "json":
			handlers = append(handlers, slog.NewJSONHandler(w, ho))
		default:
			return nil, closer, fmt.Errorf("unknown log format %q", opts.Format)
		}
	}

	if file := strings.TrimSpace(opts.File); file != "" {
		lw := &lj.Logger{Filename: file, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		closer = lw
		handlers = append(handlers, slog.NewJSONHandler(lw, &slog.HandlerOptions{
			Level:       level,
			AddSource:   opts.AddSource,
			ReplaceAttr: levelNames,
		}))
	}

	switch len(handlers) {
	case 0:
		return nil, closer, nil
	case 1:
		return slog.New(handlers[0]), closer, nil
	default:
		return slog.New(&multi{hs: handlers}), closer, nil
	}
}

// ParseLevel maps a level name to its slog level. "trace" is the level
// below debug used for per-line parser logging.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return types.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// levelNames prints LevelTrace as "TRACE" instead of "DEBUG-4".
func levelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == types.LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// multi fans out log records to multiple handlers.
type multi struct{ hs []slog.Handler }

func (m *multi) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multi) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multi) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithAttrs(attrs)
	}
	return &multi{hs: res}
}

func (m *multi) WithGroup(name string) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithGroup(name)
	}
	return &multi{hs: res}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
