package gossa

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gossa/gossa/internal/lexer"
	"github.com/gossa/gossa/internal/parser"
	"github.com/gossa/gossa/internal/types"
	"github.com/gossa/gossa/script"
)

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (lines, records, tags).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = types.LevelTrace

// ErrNoSection is returned by ParseSection when offset is not inside a
// section.
var ErrNoSection = errors.New("offset is not inside a section")

// Option configures Parse, ParseWithIssues, ParseSection and ParseAll.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	registry   *Registry
	diagConfig *DiagnosticConfig
	process    bool
	semantic   *bool
	markup     *bool
	charset    string
	workers    int
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithRegistry sets the registry used to resolve processors for
// non-standard sections. Without one every such section is reported as
// unregistered and kept verbatim.
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithDiagnosticConfig filters and re-grades issues. ParseErrors are never
// filtered.
//
// Start from DefaultConfig or WarningsOnly: the zero DiagnosticConfig has
// MinSeverity SeverityFatal, which suppresses every issue.
func WithDiagnosticConfig(cfg DiagnosticConfig) Option {
	return func(c *config) { c.diagConfig = &cfg }
}

// WithProcessExtensions runs each bound processor's Process during the
// parse and stores the result, available from Section.Data.
func WithProcessExtensions() Option {
	return func(c *config) { c.process = true }
}

// WithSemanticChecks enables or disables typed-field interpretation and
// style cross-references. Enabled by default in ParseWithIssues.
func WithSemanticChecks(enabled bool) Option {
	return func(c *config) { c.semantic = &enabled }
}

// WithMarkupChecks enables or disables override-tag checking of event
// text. Enabled by default in ParseWithIssues.
func WithMarkupChecks(enabled bool) Option {
	return func(c *config) { c.markup = &enabled }
}

// WithCharset names the legacy character set (for example "windows-1252"
// or "shift_jis") used to transcode input that is not valid UTF-8.
func WithCharset(name string) Option {
	return func(c *config) { c.charset = name }
}

func (c config) parserConfig(checks bool) parser.Config {
	pc := parser.Config{
		Registry:          c.registry,
		ProcessExtensions: c.process,
		SemanticChecks:    checks,
		MarkupChecks:      checks,
		Diagnostics:       c.diagConfig,
	}
	if c.semantic != nil {
		pc.SemanticChecks = *c.semantic
	}
	if c.markup != nil {
		pc.MarkupChecks = *c.markup
	}
	return pc
}

// Result is everything a parse produced.
type Result struct {
	Document *Document
	// Issues are the non-fatal findings, ordered by position.
	Issues []Issue
	// Errors are the records and sections abandoned because of a fatal
	// condition. The Document still holds them as raw records.
	Errors []*ParseError
}

// Err joins the result's ParseErrors, or returns nil when there are none.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// HasIssues reports whether any issue at or above sev was found.
func (r *Result) HasIssues(sev Severity) bool {
	for _, is := range r.Issues {
		if is.Severity <= sev {
			return true
		}
	}
	return false
}

// Parse parses a subtitle script.
//
// The returned error is nil, a joined error of the *ParseError values for
// constructs that had to be abandoned (the Document is still returned and
// holds them as raw records), or an error wrapping ErrEncoding with a nil
// Document when src cannot be decoded. Issues are not reported; use
// ParseWithIssues for them. Semantic and markup checks are off unless
// enabled by option.
//
// Example:
//
//	doc, err := gossa.Parse(src)
//	for d := range doc.Dialogues() {
//	    text, _ := d.String("Text")
//	    fmt.Println(text)
//	}
func Parse(src []byte, opts ...Option) (*Document, error) {
	cfg := newConfig(opts)
	res, err := parse(src, cfg, cfg.parserConfig(false))
	if err != nil {
		return nil, err
	}
	return res.Document, res.Err()
}

// ParseWithIssues parses a subtitle script and returns its issues. The
// error is non-nil only when src cannot be decoded. Semantic and markup
// checks run unless disabled by option.
func ParseWithIssues(src []byte, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	return parse(src, cfg, cfg.parserConfig(true))
}

// ParseSection re-parses only the section containing offset. Spans in the
// result index src, so an editor can splice the section back after an
// edit. Style references resolve against every style section in src;
// checks that need the whole document are skipped.
func ParseSection(src []byte, offset ByteOffset, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	text, err := decode(src, cfg.charset, componentLogger(cfg.logger, "decode"))
	if err != nil {
		return nil, err
	}
	if len(text) != len(src) {
		// Offsets into transcoded input would not match the caller's.
		return nil, &ParseError{Kind: types.ErrKindEncoding, Message: "ParseSection needs UTF-8 input"}
	}
	bounds, ok := lexer.SectionAt(text, offset)
	if !ok {
		return nil, ErrNoSection
	}
	pc := cfg.parserConfig(true)
	pc.Partial = true
	if pc.SemanticChecks {
		for _, sb := range lexer.StyleBounds(text) {
			if sb == bounds {
				continue
			}
			styles, _, _ := parser.NewRange(text, sb, nil, parser.Config{Partial: true}).Parse()
			pc.Context = append(pc.Context, styles)
		}
	}
	p := parser.NewRange(text, bounds, componentLogger(cfg.logger, "parser"), pc)
	doc, issues, errs := p.Parse()
	return &Result{Document: doc, Issues: issues, Errors: errs}, nil
}

func parse(src []byte, cfg config, pc parser.Config) (*Result, error) {
	logger := cfg.logger
	text, err := decode(src, cfg.charset, componentLogger(logger, "decode"))
	if err != nil {
		return nil, err
	}
	p := parser.New(text, componentLogger(logger, "parser"), pc)
	doc, issues, errs := p.Parse()
	if logEnabled(logger, slog.LevelInfo) {
		logger.LogAttrs(context.Background(), slog.LevelInfo, "script parsed",
			slog.Int("bytes", len(text)),
			slog.Int("sections", len(doc.Sections())),
			slog.Int("issues", len(issues)),
			slog.Int("errors", len(errs)))
	}
	return &Result{Document: doc, Issues: issues, Errors: errs}, nil
}

// NewRegistry returns an empty extension registry.
func NewRegistry() *Registry {
	return script.NewRegistry()
}

// logEnabled returns true if logging is enabled at the given level.
func logEnabled(logger *slog.Logger, level slog.Level) bool {
	return logger != nil && logger.Enabled(context.Background(), level)
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	return types.Component(logger, component)
}
