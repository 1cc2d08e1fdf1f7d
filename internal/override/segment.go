// Package override parses the inline override-tag markup embedded in event
// text ("{\b1}Bold{\b0}") into literal runs and typed tag invocations.
package override

import (
	"iter"
	"strings"

	"github.com/gossa/gossa/internal/types"
)

// SegmentKind identifies what a Segment holds.
type SegmentKind int

const (
	// SegLiteral is text outside any brace block, or the non-tag text of
	// an unterminated block.
	SegLiteral SegmentKind = iota
	// SegTag is one override tag from a brace block.
	SegTag
	// SegComment is brace-block text that is not a tag, e.g. "{note}".
	SegComment
)

func (k SegmentKind) String() string {
	switch k {
	case SegLiteral:
		return "literal"
	case SegTag:
		return "tag"
	case SegComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Segment is one run of a text field.
type Segment struct {
	Kind SegmentKind
	Span types.Span
	Tag  *Tag // set for SegTag
}

// Text returns the raw source text of the segment.
func (s Segment) Text(src []byte) string {
	return s.Span.Text(src)
}

// Plain returns the literal text with the \N, \n and \h escapes resolved
// to a newline, a newline and a non-breaking space. Tag and comment
// segments have no plain text.
func (s Segment) Plain(src []byte) string {
	if s.Kind != SegLiteral {
		return ""
	}
	raw := s.Span.Text(src)
	if !strings.Contains(raw, `\`) {
		return raw
	}
	return escapeReplacer.Replace(raw)
}

var escapeReplacer = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, "\u00a0")

// ArgKind is the interpreted shape of a tag argument.
type ArgKind int

const (
	ArgInt    ArgKind = iota // Num holds the value
	ArgFloat                 // Num holds the value
	ArgColor                 // Color holds 0xBBGGRR
	ArgAlpha                 // Num holds 0-255
	ArgString                // Str holds the text (font names, drawings)
	ArgTags                  // Tags holds the nested list (\t)
	ArgRaw                   // Str holds uninterpreted text
)

func (k ArgKind) String() string {
	switch k {
	case ArgInt:
		return "int"
	case ArgFloat:
		return "float"
	case ArgColor:
		return "color"
	case ArgAlpha:
		return "alpha"
	case ArgString:
		return "string"
	case ArgTags:
		return "tags"
	case ArgRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Arg is one argument of a tag invocation.
type Arg struct {
	Kind  ArgKind
	Span  types.Span
	Num   float64
	Color uint32
	Str   string
	Tags  []Tag
}

// Tag is a single override tag invocation such as \pos(10,20).
type Tag struct {
	Name     string
	NameSpan types.Span
	Args     []Arg
	// Span covers the whole invocation from the backslash.
	Span types.Span
	// Known is false for tags missing from the builtin table; their
	// arguments are kept as a single ArgRaw.
	Known bool
}

// String re-emits the tag exactly as written.
func (t *Tag) String(src []byte) string {
	return t.Span.Text(src)
}

// Arg returns the i-th argument, or false if absent.
func (t *Tag) Arg(i int) (Arg, bool) {
	if t == nil || i < 0 || i >= len(t.Args) {
		return Arg{}, false
	}
	return t.Args[i], true
}

// AllTags yields every tag in segs, including tags nested inside \t, in
// source order.
func AllTags(segs []Segment) iter.Seq[*Tag] {
	return func(yield func(*Tag) bool) {
		for _, s := range segs {
			if s.Tag != nil && !yieldTag(s.Tag, yield) {
				return
			}
		}
	}
}

func yieldTag(t *Tag, yield func(*Tag) bool) bool {
	if !yield(t) {
		return false
	}
	for _, a := range t.Args {
		for i := range a.Tags {
			if !yieldTag(&a.Tags[i], yield) {
				return false
			}
		}
	}
	return true
}

// PlainText concatenates the plain text of all literal segments.
func PlainText(src []byte, segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Kind == SegLiteral {
			b.WriteString(s.Plain(src))
		}
	}
	return b.String()
}
