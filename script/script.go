// Package script is the parsed model of an SSA/ASS subtitle script: the
// Document, its Sections and Records, the inline override-tag Segments, and
// the Registry through which vendor sections get a processor.
//
// All positions are Spans into the source buffer the Document was parsed
// from. A Document borrows that buffer and stays valid only while the
// buffer is alive and unmodified.
package script

import (
	"iter"

	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/override"
	"github.com/gossa/gossa/internal/types"
)

// Span is a half-open byte range into the source buffer.
type Span = types.Span

// ByteOffset is a byte position in the source buffer.
type ByteOffset = types.ByteOffset

// Issue is a recoverable diagnostic.
type Issue = types.Issue

// ParseError is a fatal diagnostic scoped to one record or section.
type ParseError = types.ParseError

// ErrorKind identifies the condition behind a ParseError.
type ErrorKind = types.ErrorKind

// Severity of an issue.
type Severity = types.Severity

// Category of an issue.
type Category = types.Category

const (
	SeverityFatal   = types.SeverityFatal
	SeverityWarning = types.SeverityWarning
	SeverityInfo    = types.SeverityInfo
)

const (
	CategoryStructural = types.CategoryStructural
	CategorySemantic   = types.CategorySemantic
	CategoryExtension  = types.CategoryExtension
	CategoryMarkup     = types.CategoryMarkup
)

// Kind identifies a standard section kind or KindExtension.
type Kind = builtins.Kind

const (
	KindNone         = builtins.KindNone
	KindScriptInfo   = builtins.KindScriptInfo
	KindV4Styles     = builtins.KindV4Styles
	KindV4PlusStyles = builtins.KindV4PlusStyles
	KindEvents       = builtins.KindEvents
	KindFonts        = builtins.KindFonts
	KindGraphics     = builtins.KindGraphics
	KindExtension    = builtins.KindExtension
)

// FieldType is the semantic type of a schema field.
type FieldType = builtins.FieldType

// Segment is one run of an event's text: literal, tag or block comment.
type Segment = override.Segment

// SegmentKind identifies what a Segment holds.
type SegmentKind = override.SegmentKind

// Tag is one override tag invocation.
type Tag = override.Tag

// Arg is one override tag argument.
type Arg = override.Arg

// ArgKind is the interpreted shape of an Arg.
type ArgKind = override.ArgKind

const (
	SegLiteral = override.SegLiteral
	SegTag     = override.SegTag
	SegComment = override.SegComment
)

const (
	ArgInt    = override.ArgInt
	ArgFloat  = override.ArgFloat
	ArgColor  = override.ArgColor
	ArgAlpha  = override.ArgAlpha
	ArgString = override.ArgString
	ArgTags   = override.ArgTags
	ArgRaw    = override.ArgRaw
)

// ParseText splits arbitrary text into override segments. Record.Segments
// is the usual entry point.
func ParseText(src []byte, span Span) ([]Segment, []Issue) {
	return override.Parse(src, span)
}

// AllTags yields every tag in segs, including tags nested inside \t, in
// source order.
func AllTags(segs []Segment) iter.Seq[*Tag] {
	return override.AllTags(segs)
}
