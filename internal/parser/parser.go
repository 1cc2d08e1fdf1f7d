// Package parser folds the line tokens of a subtitle script into a
// script.Document.
//
// The parser never aborts the whole document. Recoverable problems become
// issues; a fatal ParseError abandons only the record or section it
// concerns and scanning resumes at the next line or section header.
// Issues pass through an optional DiagnosticConfig before they are kept.
package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/lexer"
	"github.com/gossa/gossa/internal/types"
	"github.com/gossa/gossa/script"
)

// Config controls optional parser passes.
type Config struct {
	// Registry resolves processors for extension sections. May be nil.
	Registry *script.Registry
	// ProcessExtensions runs each bound processor's Process at parse time
	// and stores the result in the section.
	ProcessExtensions bool
	// SemanticChecks interprets every typed field and cross-references
	// styles.
	SemanticChecks bool
	// MarkupChecks parses the override tags of every event.
	MarkupChecks bool
	// Diagnostics filters issues. Nil reports everything.
	Diagnostics *types.DiagnosticConfig
	// Partial marks a parse of one section of a larger buffer. Checks that
	// need the whole document, such as [Script Info] presence, are skipped.
	Partial bool
	// Context holds documents parsed from the rest of the buffer. Their
	// styles count as defined when checking style references.
	Context []*script.Document
}

// Parser converts the token stream of one buffer into a Document.
type Parser struct {
	source []byte
	start  int
	lex    *lexer.Lexer
	cfg    Config
	b      *script.Builder
	issues []types.Issue
	errors []*types.ParseError
	types.Logger

	// state of the section being filled
	sec       *script.Section
	proc      script.SectionProcessor
	schema    *script.Schema
	records   int
	skipRest  bool
	seenKeys  map[string]bool
	extension []extensionSection
}

type extensionSection struct {
	sec  *script.Section
	proc script.SectionProcessor
}

// New returns a Parser over the whole source. Pass nil for logger to
// disable logging.
func New(source []byte, logger *slog.Logger, cfg Config) *Parser {
	return NewRange(source, types.SpanOf(0, len(source)), logger, cfg)
}

// NewRange returns a Parser over the lines in span, which should start at
// a line start. Spans in the result index the whole source.
func NewRange(source []byte, span types.Span, logger *slog.Logger, cfg Config) *Parser {
	start, end := int(span.Start), int(span.End)
	p := &Parser{
		source: source,
		start:  start,
		lex:    lexer.NewRange(source, start, end, types.Component(logger, "lexer")),
		cfg:    cfg,
		b:      script.NewBuilder(source),
		Logger: types.Logger{L: logger},
	}
	p.Log(slog.LevelDebug, "parser initialized",
		slog.Int("start", start),
		slog.Int("end", end))
	return p
}

// Parse builds the document. It always returns a Document; the errors
// list the records and sections that were kept raw because of a fatal
// condition.
func (p *Parser) Parse() (*script.Document, []types.Issue, []*types.ParseError) {
	if p.start == 0 {
		p.b.SetBOM(bytes.HasPrefix(p.source, []byte{0xEF, 0xBB, 0xBF}))
	}
	for {
		tok := p.lex.NextToken()
		if tok.Kind == lexer.TokEOF {
			break
		}
		switch tok.Kind {
		case lexer.TokSectionHeader:
			p.closeSection()
			p.openSection(tok)
		case lexer.TokComment:
			if p.sec == nil {
				p.b.AddPreamble(tok.Span)
			} else {
				p.b.AddComment(p.sec, tok.Span)
			}
		case lexer.TokFieldDeclaration:
			p.format(tok)
		case lexer.TokRecord:
			p.record(tok)
		case lexer.TokMalformed:
			p.malformed(tok)
		}
	}
	p.closeSection()
	for _, issue := range p.lex.Issues() {
		p.report(issue)
	}

	doc := p.b.Document()
	p.runExtensions()
	if p.cfg.SemanticChecks {
		p.semantic(doc)
	}
	if p.cfg.MarkupChecks {
		p.markup(doc)
	}
	types.SortIssues(p.issues)

	p.Log(slog.LevelDebug, "parse complete",
		slog.Int("sections", len(doc.Sections())),
		slog.Int("issues", len(p.issues)),
		slog.Int("errors", len(p.errors)))
	return doc, p.issues, p.errors
}

func (p *Parser) openSection(tok lexer.Token) {
	name := tok.Name.Text(p.source)
	sec, replaced := p.b.OpenSection(name, tok.Span, tok.Name, tok.Section)
	if replaced != nil {
		p.emit(types.CategoryStructural, types.SeverityWarning, types.DiagSectionDuplicate, tok.Span,
			fmt.Sprintf("duplicate [%s] section replaces the earlier one", name),
			"merge the two sections")
	}
	p.sec = sec
	p.proc = nil
	p.schema = nil
	p.records = 0
	p.skipRest = false
	p.seenKeys = nil

	if tok.Section == builtins.KindExtension {
		p.bindExtension(sec, name, tok.Span)
	}
	p.Log(slog.LevelDebug, "section opened",
		slog.String("name", name),
		slog.String("kind", tok.Section.String()))
}

func (p *Parser) bindExtension(sec *script.Section, name string, span types.Span) {
	proc, handle, ok := p.cfg.Registry.Resolve(name)
	if !ok {
		p.emit(types.CategoryExtension, types.SeverityWarning, types.DiagExtensionUnregistered, span,
			fmt.Sprintf("no processor registered for [%s]; records kept verbatim", name),
			"register a section processor to interpret it")
		return
	}
	p.b.Bind(sec, handle, proc)
	p.proc = proc
	p.Log(slog.LevelDebug, "extension bound",
		slog.String("section", name),
		slog.String("pattern", handle.Pattern()))
}

func (p *Parser) closeSection() {
	if p.sec == nil {
		return
	}
	if p.proc != nil {
		p.extension = append(p.extension, extensionSection{sec: p.sec, proc: p.proc})
	}
	p.Log(slog.LevelDebug, "section closed",
		slog.String("name", p.sec.Name()),
		slog.Int("records", len(p.sec.Records())))
	p.sec = nil
	p.proc = nil
}

// runExtensions validates every bound extension section that survived
// duplicate replacement, and processes it when asked to.
func (p *Parser) runExtensions() {
	for _, ext := range p.extension {
		raw := ext.sec.Raw()
		for _, issue := range ext.proc.Validate(raw) {
			issue.Category = types.CategoryExtension
			if issue.Severity == types.SeverityFatal {
				issue.Severity = types.SeverityWarning
			}
			if issue.Code == "" {
				issue.Code = types.DiagExtensionInvalid
			}
			p.report(issue)
		}
		if !p.cfg.ProcessExtensions {
			continue
		}
		data, err := ext.proc.Process(raw)
		if err != nil {
			p.emit(types.CategoryExtension, types.SeverityWarning, types.DiagExtensionFailed, ext.sec.HeaderSpan(),
				fmt.Sprintf("processing [%s] failed: %v", ext.sec.Name(), err), "")
			continue
		}
		p.b.SetData(ext.sec, data)
	}
}

func (p *Parser) format(tok lexer.Token) {
	if p.sec == nil {
		p.outside(tok)
		return
	}
	if p.skipRest {
		p.addRaw(tok)
		return
	}
	names := make([]string, 0, len(tok.Fields))
	for _, f := range tok.Fields {
		names = append(names, f.Text(p.source))
	}
	if len(names) == 0 || (len(names) == 1 && names[0] == "") {
		p.fail(types.ErrKindEmptyFormat, tok.Span,
			fmt.Sprintf("Format line in [%s] declares no fields; the rest of the section is kept raw", p.sec.Name()))
		p.skipRest = true
		p.addRaw(tok)
		return
	}

	kind := p.sec.Kind()
	if p.schema != nil && p.schema.Declared() {
		p.emit(types.CategoryStructural, types.SeverityWarning, types.DiagFormatRedeclared, tok.Span,
			fmt.Sprintf("Format redeclared in [%s]; it applies to the records after it", p.sec.Name()), "")
	}
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		key := strings.ToLower(n)
		if seen[key] {
			p.emit(types.CategoryStructural, types.SeverityWarning, types.DiagFormatDuplicate, tok.Fields[i],
				fmt.Sprintf("field %q declared twice; lookups use the first", n), "")
		}
		seen[key] = true
		if _, known := builtins.LookupFieldType(kind, n); !known {
			p.emit(types.CategoryStructural, types.SeverityInfo, types.DiagFormatUnknownField, tok.Fields[i],
				fmt.Sprintf("field %q is not part of the [%s] format", n, kind), "")
		}
	}
	for _, req := range builtins.RequiredFields(kind) {
		if !seen[strings.ToLower(req)] {
			p.emit(types.CategoryStructural, types.SeverityWarning, types.DiagFormatMissingField, tok.Span,
				fmt.Sprintf("Format in [%s] does not declare %q", p.sec.Name(), req), "")
		}
	}

	p.schema = script.DeclaredSchema(kind, names, tok.Span)
	p.b.SetSchema(p.sec, p.schema)
	if p.TraceEnabled() {
		p.Trace("format declared", slog.Int("fields", len(names)))
	}
}

func (p *Parser) record(tok lexer.Token) {
	if p.sec == nil {
		p.outside(tok)
		return
	}
	if p.skipRest {
		p.addRaw(tok)
		return
	}
	kind := p.sec.Kind()
	switch {
	case kind.IsKeyValue():
		if kind == builtins.KindScriptInfo {
			p.checkDuplicateKey(tok)
		}
		p.b.AddRecord(p.sec, script.Record{Keyword: tok.Name, Fields: tok.Fields, Span: tok.Span}, nil)
	case kind.IsAttachment():
		p.b.AddRecord(p.sec, script.Record{Keyword: tok.Name, Fields: tok.Fields, Span: tok.Span, Data: tok.Data}, nil)
	default:
		p.tabular(tok, kind)
	}
}

func (p *Parser) tabular(tok lexer.Token, kind builtins.Kind) {
	if !builtins.KeywordAllowed(kind, tok.Keyword) {
		p.fail(types.ErrKindKeywordNotAllowed, tok.Span,
			fmt.Sprintf("%s records do not belong in [%s]; kept raw", tok.Keyword, p.sec.Name()))
		p.addRaw(tok)
		return
	}
	if p.schema == nil {
		p.schema = script.DefaultSchema(kind)
		p.b.SetSchema(p.sec, p.schema)
		p.emit(types.CategoryStructural, types.SeverityInfo, types.DiagFormatMissing, tok.Span,
			fmt.Sprintf("no Format line before the first record of [%s]; using the default schema", p.sec.Name()),
			"add a Format line")
	}
	fields := p.reconcile(tok)
	p.b.AddRecord(p.sec, script.Record{Keyword: tok.Name, Fields: fields, Span: tok.Span}, p.schema)
	p.records++
	if p.TraceEnabled() {
		p.Trace("record",
			slog.String("keyword", tok.Keyword),
			slog.Int("fields", len(fields)))
	}
}

// reconcile fits the record's fields to the schema length: excess content
// folds into the last field, missing fields default to empty spans at the
// end of the line with one warning each.
func (p *Parser) reconcile(tok lexer.Token) []types.Span {
	n := p.schema.Len()
	fields := tok.Fields
	absorbed := tok.Absorbed
	if len(fields) > n {
		absorbed += len(fields) - n
		merged := types.NewSpan(fields[n-1].Start, fields[len(fields)-1].End)
		fields = append(fields[:n-1:n-1], merged)
	}
	if absorbed > 1 && p.schema.FieldType(n-1) != builtins.FieldText {
		p.emit(types.CategoryStructural, types.SeverityInfo, types.DiagFieldOverflow, fields[n-1],
			fmt.Sprintf("field %q absorbed %d extra delimiters", p.schema.Name(n-1), absorbed), "")
	}
	if len(fields) < n {
		end := types.NewSpan(tok.Span.End, tok.Span.End)
		fields = append(fields[:len(fields):len(fields)], make([]types.Span, n-len(fields))...)
		for i := len(tok.Fields); i < n; i++ {
			fields[i] = end
			p.emit(types.CategoryStructural, types.SeverityWarning, types.DiagFieldMissing, tok.Span,
				fmt.Sprintf("field %q is missing; treated as empty", p.schema.Name(i)), "")
		}
	}
	return fields
}

func (p *Parser) checkDuplicateKey(tok lexer.Token) {
	key := strings.ToLower(tok.Name.Text(p.source))
	if p.seenKeys == nil {
		p.seenKeys = make(map[string]bool)
	}
	if p.seenKeys[key] {
		p.emit(types.CategoryStructural, types.SeverityInfo, types.DiagScriptInfoDuplicate, tok.Name,
			fmt.Sprintf("%q is set more than once; the last value wins", tok.Name.Text(p.source)), "")
	}
	p.seenKeys[key] = true
}

func (p *Parser) malformed(tok lexer.Token) {
	if p.sec == nil {
		p.b.AddPreamble(tok.Span)
		return
	}
	p.addRaw(tok)
}

// outside keeps a data line found before any header in the preamble.
func (p *Parser) outside(tok lexer.Token) {
	p.fail(types.ErrKindRecordOutsideSection, tok.Span,
		"record before any section header; kept in the preamble")
	p.b.AddPreamble(tok.Span)
}

func (p *Parser) addRaw(tok lexer.Token) {
	p.b.AddRecord(p.sec, script.Record{Keyword: tok.Name, Fields: tok.Fields, Span: tok.Span, Raw: true}, nil)
}

// emit records an issue if the diagnostic config reports it.
func (p *Parser) emit(cat types.Category, sev types.Severity, code string, span types.Span, msg, suggestion string) {
	p.report(types.Issue{
		Category:   cat,
		Severity:   sev,
		Code:       code,
		Span:       span,
		Message:    msg,
		Suggestion: suggestion,
	})
}

func (p *Parser) report(issue types.Issue) {
	if p.cfg.Diagnostics != nil {
		var ok bool
		if issue, ok = p.cfg.Diagnostics.Apply(issue); !ok {
			return
		}
	}
	p.issues = append(p.issues, issue)
}

func (p *Parser) fail(kind types.ErrorKind, span types.Span, msg string) {
	err := &types.ParseError{Kind: kind, Span: span, Message: msg}
	p.errors = append(p.errors, err)
	p.Log(slog.LevelDebug, "construct abandoned",
		slog.String("kind", kind.String()),
		slog.Int("offset", int(span.Start)))
}
