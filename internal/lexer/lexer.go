package lexer

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lexer tokenizes subtitle script text one physical line at a time.
// It is lazy (NextToken scans a single line) and restartable (Reset).
// Tokenization never fails; malformed input degrades to issues.
type Lexer struct {
	source []byte
	start  int // first byte of the scan window
	limit  int // end of the scan window (exclusive)
	pos    int

	section    builtins.Kind
	fieldCount int  // schema length in force for the current section
	inEntry    bool // an attachment entry has been opened

	issues []types.Issue
	types.Logger
}

// New returns a Lexer over the whole source.
func New(source []byte, logger *slog.Logger) *Lexer {
	return NewRange(source, 0, len(source), logger)
}

// NewRange returns a Lexer that scans source[start:end] while reporting
// spans relative to the whole buffer. start should be a line start.
func NewRange(source []byte, start, end int, logger *slog.Logger) *Lexer {
	end = min(max(end, 0), len(source))
	start = min(max(start, 0), end)
	l := &Lexer{
		source: source,
		start:  start,
		limit:  end,
		Logger: types.Logger{L: logger},
	}
	l.Reset()
	l.Log(slog.LevelDebug, "lexer initialized",
		slog.Int("start", start),
		slog.Int("bytes", end-start))
	return l
}

// Reset rewinds the lexer to the start of its window and clears state.
func (l *Lexer) Reset() {
	l.pos = l.start
	if l.pos == 0 && bytes.HasPrefix(l.source[:l.limit], utf8BOM) {
		l.pos = len(utf8BOM)
	}
	l.section = builtins.KindNone
	l.fieldCount = 0
	l.inEntry = false
	l.issues = nil
}

// Issues returns a copy of all issues collected so far.
func (l *Lexer) Issues() []types.Issue {
	return slices.Clone(l.issues)
}

// Section returns the kind of the section the lexer is currently in.
func (l *Lexer) Section() builtins.Kind {
	return l.section
}

// FieldCount returns the schema length used to split records of the
// current section; 0 means split on every delimiter.
func (l *Lexer) FieldCount() int {
	return l.fieldCount
}

// Tokenize consumes the remaining input and returns all tokens (ending
// with TokEOF) along with the issues generated during lexing.
func (l *Lexer) Tokenize() ([]Token, []types.Issue) {
	estimated := max((l.limit-l.pos)/40, 16)
	tokens := make([]Token, 0, estimated)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	l.Log(slog.LevelDebug, "tokenization complete",
		slog.Int("tokens", len(tokens)),
		slog.Int("issues", len(l.issues)))
	return tokens, l.issues
}

// All returns a restartable sequence over the tokens of the window,
// excluding TokEOF. Each iteration starts from the beginning.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		l.Reset()
		for {
			tok := l.NextToken()
			if tok.Kind == TokEOF || !yield(tok) {
				return
			}
		}
	}
}

// NextToken classifies the next line. Returns TokEOF when the window is
// exhausted.
func (l *Lexer) NextToken() Token {
	if l.pos >= l.limit {
		return Token{Kind: TokEOF, Span: types.SpanOf(l.limit, l.limit), Section: l.section}
	}
	lineStart := l.pos
	lineEnd := lineStart
	for lineEnd < l.limit && l.source[lineEnd] != '\n' && l.source[lineEnd] != '\r' {
		lineEnd++
	}
	l.pos = lineEnd
	if l.pos < l.limit {
		if l.source[l.pos] == '\r' && l.pos+1 < l.limit && l.source[l.pos+1] == '\n' {
			l.pos++
		}
		l.pos++
	}

	tok := l.classify(lineStart, lineEnd)
	if l.TraceEnabled() {
		l.Trace("token",
			slog.String("kind", tok.Kind.String()),
			slog.Int("start", int(tok.Span.Start)),
			slog.Int("end", int(tok.Span.End)),
			slog.Int("fields", len(tok.Fields)))
	}
	return tok
}

func (l *Lexer) classify(start, end int) Token {
	tok := Token{Span: types.SpanOf(start, end), Section: l.section}

	i, _ := l.trim(start, end)
	if i == end {
		tok.Kind = TokBlank
		return tok
	}

	if l.source[i] == '[' {
		return l.header(tok, i, end)
	}

	// Inside an attachment entry every byte of the uuencode alphabet,
	// including ';' and '!', may start a payload line.
	if l.section.IsAttachment() && l.inEntry {
		return l.attachmentLine(tok, i, end)
	}

	if c := l.source[i]; c == ';' || c == '!' {
		tok.Kind = TokComment
		return tok
	}

	if l.section.IsAttachment() {
		return l.attachmentLine(tok, i, end)
	}

	kwStart, kwEnd, colon, ok := l.keywordLine(i, end)
	if !ok {
		return l.malformed(tok, i, end)
	}
	tok.Name = types.SpanOf(kwStart, kwEnd)

	if l.section.IsKeyValue() {
		vs, ve := l.trim(colon+1, end)
		tok.Kind = TokRecord
		tok.Fields = []types.Span{types.SpanOf(vs, ve)}
		return tok
	}

	keyword, ok := l.tabularKeyword(kwStart, kwEnd)
	if !ok {
		return l.malformed(tok, i, end)
	}
	tok.Keyword = keyword
	bodyStart := l.skipSpace(colon+1, end)

	if keyword == builtins.KeywordFormat {
		tok.Kind = TokFieldDeclaration
		tok.Fields, _ = l.split(bodyStart, end, 0)
		if len(tok.Fields) > 0 && !(len(tok.Fields) == 1 && tok.Fields[0].IsEmpty()) {
			l.fieldCount = len(tok.Fields)
		}
		return tok
	}

	tok.Kind = TokRecord
	tok.Fields, tok.Absorbed = l.split(bodyStart, end, l.fieldCount)
	return tok
}

func (l *Lexer) header(tok Token, open, end int) Token {
	tok.Kind = TokSectionHeader
	closeIdx := bytes.IndexByte(l.source[open+1:end], ']')
	var ns, ne int
	if closeIdx < 0 {
		ns, ne = l.trim(open+1, end)
		l.issue(types.SeverityWarning, types.DiagHeaderUnterminated, types.SpanOf(open, end),
			"section header is missing ']'", "close the header with ']'")
	} else {
		closeAt := open + 1 + closeIdx
		ns, ne = l.trim(open+1, closeAt)
		if ts, te := l.trim(closeAt+1, end); ts < te {
			l.issue(types.SeverityInfo, types.DiagHeaderTrailingText, types.SpanOf(ts, te),
				"text after section header is ignored", "")
		}
	}
	tok.Name = types.SpanOf(ns, ne)
	if ns == ne {
		l.issue(types.SeverityWarning, types.DiagHeaderEmpty, tok.Span, "section header has no name", "")
	}

	kind, ok := builtins.LookupSection(string(l.source[ns:ne]))
	if !ok {
		kind = builtins.KindExtension
	}
	l.section = kind
	l.fieldCount = len(builtins.DefaultSchema(kind))
	l.inEntry = false
	tok.Section = kind

	l.Log(slog.LevelDebug, "entering section",
		slog.String("name", string(l.source[ns:ne])),
		slog.String("kind", kind.String()),
		slog.Int("offset", open))
	return tok
}

func (l *Lexer) attachmentLine(tok Token, start, end int) Token {
	tok.Kind = TokRecord
	if kwStart, kwEnd, colon, ok := l.keywordLine(start, end); ok && l.isAttachmentEntry(kwStart, kwEnd) {
		vs, ve := l.trim(colon+1, end)
		tok.Name = types.SpanOf(kwStart, kwEnd)
		tok.Fields = []types.Span{types.SpanOf(vs, ve)}
		l.inEntry = true
		return tok
	}
	ds, de := l.trim(start, end)
	tok.Data = true
	tok.Fields = []types.Span{types.SpanOf(ds, de)}
	if !l.inEntry {
		l.issue(types.SeverityWarning, types.DiagAttachmentData, tok.Span,
			fmt.Sprintf("attachment data before any %q line", builtins.AttachmentKeyword(l.section)), "")
	}
	return tok
}

func (l *Lexer) malformed(tok Token, start, end int) Token {
	tok.Kind = TokMalformed
	tok.Name = types.Span{}
	ms, me := l.trim(start, end)
	tok.Fields = []types.Span{types.SpanOf(ms, me)}
	l.issue(types.SeverityWarning, types.DiagMalformedLine, types.SpanOf(ms, me),
		"line is not a header, comment, declaration or record; kept verbatim", "")
	return tok
}

// split cuts [start, end) on commas into at most n fields using n-1 splits
// from the left; n <= 0 splits on every comma. Every field but an absorbing
// last field is trimmed. Returns the fields and the number of commas the
// last field absorbed.
func (l *Lexer) split(start, end, n int) ([]types.Span, int) {
	capacity := n
	if capacity <= 0 {
		capacity = bytes.Count(l.source[start:end], []byte{','}) + 1
	}
	fields := make([]types.Span, 0, capacity)
	s := start
	for n <= 0 || len(fields) < n-1 {
		idx := bytes.IndexByte(l.source[s:end], ',')
		if idx < 0 {
			break
		}
		fs, fe := l.trim(s, s+idx)
		fields = append(fields, types.SpanOf(fs, fe))
		s += idx + 1
	}
	if n > 0 && len(fields) == n-1 {
		absorbed := bytes.Count(l.source[s:end], []byte{','})
		fields = append(fields, types.SpanOf(s, end))
		return fields, absorbed
	}
	fs, fe := l.trim(s, end)
	fields = append(fields, types.SpanOf(fs, fe))
	return fields, 0
}

func (l *Lexer) issue(sev types.Severity, code string, span types.Span, msg, suggestion string) {
	l.issues = append(l.issues, types.Issue{
		Category:   types.CategoryStructural,
		Severity:   sev,
		Code:       code,
		Span:       span,
		Message:    msg,
		Suggestion: suggestion,
	})
}

func (l *Lexer) skipSpace(start, end int) int {
	for start < end && isSpace(l.source[start]) {
		start++
	}
	return start
}

// trim returns [start, end) without leading and trailing spaces and tabs.
func (l *Lexer) trim(start, end int) (int, int) {
	start = l.skipSpace(start, end)
	for end > start && isSpace(l.source[end-1]) {
		end--
	}
	return start, end
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}
