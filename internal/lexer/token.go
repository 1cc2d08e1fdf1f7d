// Package lexer provides line-oriented tokenization of subtitle script text.
package lexer

import (
	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/types"
)

// Token is one classified source line. All positions are spans into the
// source buffer; a token never copies text.
type Token struct {
	Kind TokenKind
	// Span covers the line content, excluding the line terminator.
	Span types.Span
	// Name is the section name for headers and the keyword (or key) for
	// declarations and records. Empty for data lines.
	Name types.Span
	// Keyword is the canonical keyword for tabular declarations and records
	// (builtins.KeywordDialogue etc.), empty otherwise.
	Keyword string
	// Fields are the split field values. For Format lines these are the
	// declared field names.
	Fields []types.Span
	// Absorbed counts delimiters folded into the last field because the
	// line held more fields than the schema in force.
	Absorbed int
	// Data marks an attachment payload line in [Fonts] or [Graphics].
	Data bool
	// Section is the kind of the section the token belongs to. For a
	// header it is the kind the header opens.
	Section builtins.Kind
}

// NewToken creates a new token.
func NewToken(kind TokenKind, span types.Span) Token {
	return Token{Kind: kind, Span: span}
}

// TokenKind identifies a token type.
type TokenKind int

const (
	// TokEOF is end of input.
	TokEOF TokenKind = iota
	// TokSectionHeader is a "[Name]" line.
	TokSectionHeader
	// TokFieldDeclaration is a "Format: a, b, c" line.
	TokFieldDeclaration
	// TokRecord is a data line: "Keyword: fields", "Key: value" or an
	// attachment payload line.
	TokRecord
	// TokComment is a line starting with ';' or '!'.
	TokComment
	// TokBlank is an empty or whitespace-only line.
	TokBlank
	// TokMalformed is a non-blank line matching no other form. Its content
	// is kept in Fields[0] for round-trip fidelity.
	TokMalformed
)

var tokenKindNames = [...]string{
	"EOF",
	"SectionHeader",
	"FieldDeclaration",
	"Record",
	"Comment",
	"Blank",
	"Malformed",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "TokenKind(?)"
}

// IsContent reports whether the token carries section content (anything
// but EOF, blank lines and headers).
func (k TokenKind) IsContent() bool {
	switch k {
	case TokFieldDeclaration, TokRecord, TokComment, TokMalformed:
		return true
	default:
		return false
	}
}
