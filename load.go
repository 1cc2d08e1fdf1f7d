package gossa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// ErrNoSources is returned when ParseAll is called without a source.
var ErrNoSources = errors.New("no script sources provided")

// FileResult is the outcome of parsing one file of a Source.
type FileResult struct {
	Path string
	// Result is nil when the file could not be read or decoded.
	Result *Result
	// Err is the read or decode failure.
	Err error
}

// WithWorkers bounds the number of files ParseAll parses at once.
// Defaults to the number of CPUs.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// ParseAll parses every file of source in parallel, like ParseWithIssues
// does for one buffer. Results are sorted by path. The returned error is
// non-nil only when the source cannot be listed or ctx is cancelled;
// per-file failures are reported in FileResult.Err.
//
// Example:
//
//	src, err := gossa.DirTree("./subs")
//	results, err := gossa.ParseAll(ctx, src, gossa.WithLogger(slog.Default()))
func ParseAll(ctx context.Context, source Source, opts ...Option) ([]FileResult, error) {
	if source == nil {
		return nil, ErrNoSources
	}
	cfg := newConfig(opts)
	logger := cfg.logger

	files, err := source.ListFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	workers := cfg.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if logEnabled(logger, slog.LevelInfo) {
		logger.LogAttrs(ctx, slog.LevelInfo, "parallel parsing",
			slog.Int("files", len(files)),
			slog.Int("workers", workers))
	}

	results := make(chan FileResult, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			results <- parseFile(source, path, cfg)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]FileResult, 0, len(files))
	for r := range results {
		out = append(out, r)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	slices.SortFunc(out, func(a, b FileResult) int {
		return strings.Compare(a.Path, b.Path)
	})

	if logEnabled(logger, slog.LevelInfo) {
		logger.LogAttrs(ctx, slog.LevelInfo, "parallel parsing complete",
			slog.Int("files", len(out)))
	}
	return out, nil
}

func parseFile(source Source, path string, cfg config) FileResult {
	rc, err := source.Open(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	if cfg.logger != nil {
		cfg.logger = cfg.logger.With(slog.String("file", path))
	}
	res, err := parse(content, cfg, cfg.parserConfig(true))
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	return FileResult{Path: path, Result: res}
}
