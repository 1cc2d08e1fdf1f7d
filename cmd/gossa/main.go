// Command gossa is a CLI tool for checking, dumping and normalizing
// SSA/ASS subtitle scripts.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gossa/gossa"
	"github.com/gossa/gossa/cmd/internal/cliutil"
	"github.com/gossa/gossa/ext/aegisub"
	"github.com/gossa/gossa/internal/config"
	"github.com/gossa/gossa/internal/logging"
)

// Exit codes.
const (
	exitOK              = 0 // success
	exitError           = 1 // usage error, unreadable input, or fatal parse error
	exitStrictViolation = 2 // strict mode found warnings
)

const usage = `gossa - SSA/ASS subtitle script parser

Usage:
  gossa <command> [options] [FILE|DIR|-]...

Commands:
  lint    Check scripts for issues
  dump    Output the parsed document as JSON or YAML
  fmt     Re-serialize scripts
  tags    Count override tags used in event text
  version Show version

Common options:
  -c, --config FILE   Configuration file (default: .gossa.yaml if present)
  --log-file FILE     Write a rotated JSON log to FILE
  -v, --verbose       Enable debug logging
  -vv                 Enable trace logging (implies -v)
  -h, --help          Show help

Directories are searched recursively for .ass and .ssa files.
A lone "-" reads standard input.

Examples:
  gossa lint episode01.ass
  gossa lint --min-severity warning subs/
  gossa dump --format yaml episode01.ass
  gossa fmt -w episode01.ass
  gossa tags --unknown subs/
`

type cli struct {
	cliutil.GlobalFlags
	cfg    config.Config
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags, cmd, cmdArgs := cliutil.ParseArgs(args)
	c := &cli{GlobalFlags: flags, stdin: stdin, stdout: stdout, stderr: stderr}

	if c.HelpFlag && cmd == "" {
		_, _ = fmt.Fprint(stdout, usage)
		return exitOK
	}
	if cmd == "" {
		_, _ = fmt.Fprint(stderr, usage)
		return exitError
	}

	switch cmd {
	case "version":
		c.printVersion()
		return exitOK
	case "help":
		_, _ = fmt.Fprint(stdout, usage)
		return exitOK
	}

	var cmdFn func([]string) int
	switch cmd {
	case "lint":
		cmdFn = c.cmdLint
	case "dump":
		cmdFn = c.cmdDump
	case "fmt":
		cmdFn = c.cmdFmt
	case "tags":
		cmdFn = c.cmdTags
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command: %s\n\n", cmd)
		_, _ = fmt.Fprint(stderr, usage)
		return exitError
	}

	closeLog, err := c.setup()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	defer closeLog()
	return cmdFn(cmdArgs)
}

// setup loads the configuration and builds the logger. Command-line
// verbosity and --log-file take precedence over the file and environment.
func (c *cli) setup() (func(), error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg

	opts := cfg.LogOptions()
	switch c.Verbose {
	case 1:
		opts.Level = "debug"
	case 2:
		opts.Level = "trace"
	}
	opts = opts.Merge(logging.Options{File: c.LogFile})

	logger, closer, err := logging.New(c.stderr, opts)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return func() { _ = closer.Close() }, nil
}

// parseOptions builds the gossa options shared by every command.
func (c *cli) parseOptions(extra ...gossa.Option) ([]gossa.Option, error) {
	dc, err := c.cfg.DiagnosticConfig()
	if err != nil {
		return nil, err
	}
	reg := gossa.NewRegistry()
	if err := aegisub.Register(reg); err != nil {
		return nil, err
	}

	opts := []gossa.Option{
		gossa.WithRegistry(reg),
		gossa.WithDiagnosticConfig(dc),
		gossa.WithWorkers(c.cfg.Parse.Workers),
	}
	if c.logger != nil {
		opts = append(opts, gossa.WithLogger(c.logger))
	}
	if cs := c.cfg.Parse.Charset; cs != "" {
		opts = append(opts, gossa.WithCharset(cs))
	}
	if v := c.cfg.Parse.SemanticChecks; v != nil {
		opts = append(opts, gossa.WithSemanticChecks(*v))
	}
	if v := c.cfg.Parse.MarkupChecks; v != nil {
		opts = append(opts, gossa.WithMarkupChecks(*v))
	}
	if c.cfg.Parse.ProcessExtensions {
		opts = append(opts, gossa.WithProcessExtensions())
	}
	return append(opts, extra...), nil
}

// buildSource composes the inputs named on the command line. Directories
// are walked recursively; "-" is standard input.
func (c *cli) buildSource(args []string) (gossa.Source, error) {
	if len(args) == 0 {
		return nil, gossa.ErrNoSources
	}
	var srcOpts []gossa.SourceOption
	if exts := c.cfg.Parse.Extensions; len(exts) > 0 {
		srcOpts = append(srcOpts, gossa.WithExtensions(exts...))
	}

	var sources []gossa.Source
	var files []string
	for _, arg := range args {
		if arg == "-" {
			data, err := io.ReadAll(c.stdin)
			if err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			sources = append(sources, stdinSource(data))
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		src, err := gossa.DirTree(arg, srcOpts...)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(files) > 0 {
		sources = append(sources, gossa.Files(files...))
	}
	if len(sources) == 1 {
		return sources[0], nil
	}
	return gossa.Multi(sources...), nil
}

// parseArgs parses every input named in args.
func (c *cli) parseArgs(args []string, extra ...gossa.Option) ([]gossa.FileResult, error) {
	src, err := c.buildSource(args)
	if err != nil {
		return nil, err
	}
	opts, err := c.parseOptions(extra...)
	if err != nil {
		return nil, err
	}
	return gossa.ParseAll(context.Background(), src, opts...)
}

// stdinName is the path under which standard input is reported.
const stdinName = "<stdin>"

type stdinSource []byte

func (s stdinSource) Open(path string) (io.ReadCloser, error) {
	if path != stdinName {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return io.NopCloser(strings.NewReader(string(s))), nil
}

func (s stdinSource) ListFiles() ([]string, error) {
	return []string{stdinName}, nil
}

func (c *cli) printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	_, _ = fmt.Fprintf(c.stdout, "gossa %s\n", version)
}

func (c *cli) printError(format string, args ...any) {
	cliutil.PrintError(c.stderr, format, args...)
}
