package lexer

import (
	"bytes"

	"github.com/gossa/gossa/internal/builtins"
)

// keywordLine locates a "Keyword:" prefix on the line [start, end).
// Returns the trimmed keyword span bounds and the colon offset, or ok=false
// when the line has no colon or an empty keyword.
func (l *Lexer) keywordLine(start, end int) (kwStart, kwEnd, colon int, ok bool) {
	idx := bytes.IndexByte(l.source[start:end], ':')
	if idx < 0 {
		return 0, 0, 0, false
	}
	colon = start + idx
	kwStart, kwEnd = l.trim(start, colon)
	if kwStart == kwEnd {
		return 0, 0, 0, false
	}
	return kwStart, kwEnd, colon, true
}

// tabularKeyword resolves the canonical keyword for a tabular record line.
func (l *Lexer) tabularKeyword(kwStart, kwEnd int) (string, bool) {
	return builtins.LookupKeyword(string(l.source[kwStart:kwEnd]))
}

// isAttachmentEntry reports whether the keyword opens a new embedded file
// in the current attachment section.
func (l *Lexer) isAttachmentEntry(kwStart, kwEnd int) bool {
	want := builtins.AttachmentKeyword(l.section)
	return bytes.EqualFold(l.source[kwStart:kwEnd], []byte(want))
}
