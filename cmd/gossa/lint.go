package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/gossa/gossa"
)

const lintUsage = `gossa lint - Check scripts for issues

Usage:
  gossa lint [options] [FILE|DIR|-]...

Options:
  --min-severity S  Report issues at severity S or above (warning, info; default: info)
  --ignore CODE     Ignore issue codes (repeatable, supports globs like "tag-*")
  --only CODE       Only report these codes (repeatable)
  --format FMT      Output format: text, json (default: text)
  --strict          Exit 2 if any warning is reported
  --summary         Show summary only (counts by severity)
  --quiet           No output, exit code only
  -h, --help        Show help

Severity Levels:
  fatal       Construct abandoned and kept verbatim
  warning     Format deviation, still usable
  info        Stylistic or deprecated usage

Exit status is 1 when any fatal error is found, 2 when --strict is set and
only warnings are found, 0 otherwise.

Examples:
  gossa lint episode01.ass
  gossa lint --min-severity warning subs/
  gossa lint --ignore "tag-*" episode01.ass
  gossa lint --format json episode01.ass
`

type lintConfig struct {
	minSeverity string
	ignore      []string
	only        []string
	format      string
	strict      bool
	summary     bool
	quiet       bool
}

type lintResult struct {
	Diagnostics []lintDiagnostic `json:"diagnostics,omitempty"`
	Summary     lintSummary      `json:"summary"`
	ExitCode    int              `json:"-"`
}

type lintDiagnostic struct {
	File        string `json:"file"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	Severity    string `json:"severity"`
	SeverityNum int    `json:"severity_num"`
	Category    string `json:"category,omitempty"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Suggestion  string `json:"suggestion,omitempty"`
}

type lintSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	ByCode     map[string]int `json:"by_code,omitempty"`
	Files      int            `json:"files"`
}

func (c *cli) cmdLint(args []string) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, lintUsage) }

	cfg := lintConfig{format: "text"}
	fs.StringVar(&cfg.minSeverity, "min-severity", "", "report threshold")
	fs.Func("ignore", "ignore codes", func(s string) error {
		cfg.ignore = append(cfg.ignore, s)
		return nil
	})
	fs.Func("only", "only report these codes", func(s string) error {
		cfg.only = append(cfg.only, s)
		return nil
	})
	fs.StringVar(&cfg.format, "format", cfg.format, "output format")
	fs.BoolVar(&cfg.strict, "strict", false, "fail on warnings")
	fs.BoolVar(&cfg.summary, "summary", false, "summary only")
	fs.BoolVar(&cfg.quiet, "quiet", false, "no output")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.HelpFlag {
		_, _ = fmt.Fprint(c.stdout, lintUsage)
		return exitOK
	}

	switch cfg.format {
	case "text", "json":
		// ok
	default:
		c.printError("unknown format: %s", cfg.format)
		return exitError
	}

	if cfg.minSeverity != "" {
		c.cfg.Diagnostics.MinSeverity = cfg.minSeverity
	}
	c.cfg.Diagnostics.Ignore = append(c.cfg.Diagnostics.Ignore, cfg.ignore...)

	results, err := c.parseArgs(fs.Args())
	if err != nil {
		c.printError("%v", err)
		if errors.Is(err, gossa.ErrNoSources) {
			_, _ = fmt.Fprint(c.stderr, lintUsage)
		}
		return exitError
	}

	result := runLint(results, cfg)

	if !cfg.quiet {
		var err error
		switch cfg.format {
		case "json":
			err = c.printLintJSON(result)
		default:
			c.printLintText(result, cfg)
		}
		if err != nil {
			c.printError("output encoding failed: %v", err)
			return exitError
		}
	}

	return result.ExitCode
}

func runLint(results []gossa.FileResult, cfg lintConfig) *lintResult {
	result := &lintResult{
		Summary: lintSummary{
			BySeverity: make(map[string]int),
			ByCode:     make(map[string]int),
			Files:      len(results),
		},
	}

	add := func(d lintDiagnostic) {
		if len(cfg.only) > 0 && !matchesAny(d.Code, cfg.only) {
			return
		}
		result.Diagnostics = append(result.Diagnostics, d)
		result.Summary.Total++
		result.Summary.BySeverity[d.Severity]++
		result.Summary.ByCode[d.Code]++
	}

	for _, fr := range results {
		if fr.Err != nil {
			code := "read-error"
			var pe *gossa.ParseError
			if errors.As(fr.Err, &pe) {
				code = pe.Kind.String()
			}
			add(fatalDiagnostic(fr.Path, code, fr.Err.Error(), 0, 0))
			continue
		}

		lines := gossa.BuildLineTable(fr.Result.Document.Source())
		for _, e := range fr.Result.Errors {
			line, col := lines.LineCol(e.Span.Start)
			add(fatalDiagnostic(fr.Path, e.Kind.String(), e.Message, line, col))
		}
		for _, is := range fr.Result.Issues {
			line, col := lines.LineCol(is.Span.Start)
			add(lintDiagnostic{
				File:        fr.Path,
				Line:        line,
				Column:      col,
				Severity:    is.Severity.String(),
				SeverityNum: int(is.Severity),
				Category:    is.Category.String(),
				Code:        is.Code,
				Message:     is.Message,
				Suggestion:  is.Suggestion,
			})
		}
	}

	switch {
	case result.Summary.BySeverity[gossa.SeverityFatal.String()] > 0:
		result.ExitCode = exitError
	case cfg.strict && result.Summary.BySeverity[gossa.SeverityWarning.String()] > 0:
		result.ExitCode = exitStrictViolation
	}
	return result
}

func fatalDiagnostic(file, code, msg string, line, col int) lintDiagnostic {
	return lintDiagnostic{
		File:        file,
		Line:        line,
		Column:      col,
		Severity:    gossa.SeverityFatal.String(),
		SeverityNum: int(gossa.SeverityFatal),
		Code:        code,
		Message:     msg,
	}
}

func matchesAny(code string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(p, code) {
			return true
		}
	}
	return false
}

// matchGlob performs simple glob matching with * wildcard.
func matchGlob(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(s, pattern[:len(pattern)-1])
	}
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(s, pattern[1:])
	}
	return pattern == s
}

func (c *cli) printLintText(result *lintResult, cfg lintConfig) {
	if cfg.summary {
		c.printLintSummary(result)
		return
	}

	for _, d := range result.Diagnostics {
		c.printLintDiagLine(d)
	}

	if result.Summary.Total > 0 {
		_, _ = fmt.Fprintln(c.stdout)
		c.printLintSummary(result)
	} else {
		_, _ = fmt.Fprintf(c.stdout, "No issues found in %d files\n", result.Summary.Files)
	}
}

func (c *cli) printLintDiagLine(d lintDiagnostic) {
	loc := d.File
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
	}
	parts := []string{loc + ":", d.Severity + ":"}
	if d.Code != "" {
		parts = append(parts, "["+d.Code+"]")
	}
	parts = append(parts, d.Message)
	if d.Suggestion != "" {
		parts = append(parts, "("+d.Suggestion+")")
	}
	_, _ = fmt.Fprintln(c.stdout, strings.Join(parts, " "))
}

func (c *cli) printLintSummary(result *lintResult) {
	_, _ = fmt.Fprintf(c.stdout, "Checked %d files, found %d issues:\n", result.Summary.Files, result.Summary.Total)

	for _, sev := range []gossa.Severity{gossa.SeverityFatal, gossa.SeverityWarning, gossa.SeverityInfo} {
		if n := result.Summary.BySeverity[sev.String()]; n > 0 {
			_, _ = fmt.Fprintf(c.stdout, "  %-8s %d\n", sev.String()+":", n)
		}
	}

	codes := make([]string, 0, len(result.Summary.ByCode))
	for code := range result.Summary.ByCode {
		codes = append(codes, code)
	}
	slices.SortFunc(codes, func(a, b string) int {
		if d := result.Summary.ByCode[b] - result.Summary.ByCode[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	if len(codes) > 0 {
		_, _ = fmt.Fprintln(c.stdout, "\nBy code:")
		for _, code := range codes {
			_, _ = fmt.Fprintf(c.stdout, "  %-30s %d\n", code, result.Summary.ByCode[code])
		}
	}
}

func (c *cli) printLintJSON(result *lintResult) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
