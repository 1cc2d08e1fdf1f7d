// Package gossa parses SubStation Alpha (SSA) and Advanced SubStation Alpha
// (ASS) subtitle scripts into a span-based document model.
//
// Parsing never fails on malformed input: problems are reported as issues
// and the affected lines are kept verbatim, so a parsed document always
// serializes back to equivalent text.
package gossa

import (
	"github.com/gossa/gossa/internal/types"
	"github.com/gossa/gossa/script"
)

// Type aliases for public API - document types come from the script
// subpackage.

// Document is a parsed script.
type Document = script.Document

// Section is a named block of a script.
type Section = script.Section

// Record is one data line of a section.
type Record = script.Record

// Schema is the field list in force for a tabular section.
type Schema = script.Schema

// Span is a byte range into the parsed buffer.
type Span = types.Span

// ByteOffset is a byte position in the parsed buffer.
type ByteOffset = types.ByteOffset

// Segment is one piece of parsed event text.
type Segment = script.Segment

// Tag is a parsed override tag.
type Tag = script.Tag

// Arg is an override tag argument.
type Arg = script.Arg

// Issue is a non-fatal finding.
type Issue = types.Issue

// Severity grades issues.
type Severity = types.Severity

// Category groups issues by the pass that found them.
type Category = types.Category

// ParseError is a fatal, construct-local error.
type ParseError = types.ParseError

// DiagnosticConfig filters and re-grades issues.
type DiagnosticConfig = types.DiagnosticConfig

// LineTable maps byte offsets to line and column numbers.
type LineTable = types.LineTable

// Registry maps section name patterns to processors.
type Registry = script.Registry

// SectionProcessor interprets a non-standard section.
type SectionProcessor = script.SectionProcessor

// RawSection is a processor's view of a section.
type RawSection = script.RawSection

// Attachment is a file embedded in a [Fonts] or [Graphics] section.
type Attachment = script.Attachment

// Severity levels.
const (
	SeverityFatal   = types.SeverityFatal
	SeverityWarning = types.SeverityWarning
	SeverityInfo    = types.SeverityInfo
)

// Issue categories.
const (
	CategoryStructural = types.CategoryStructural
	CategorySemantic   = types.CategorySemantic
	CategoryExtension  = types.CategoryExtension
	CategoryMarkup     = types.CategoryMarkup
)

// Errors.
var (
	ErrEncoding          = types.ErrEncoding
	ErrAlreadyRegistered = script.ErrAlreadyRegistered
	ErrInvalidPattern    = script.ErrInvalidPattern
	ErrNoField           = script.ErrNoField
	ErrNoProcessor       = script.ErrNoProcessor
	ErrInvalidValue      = script.ErrInvalidValue
)

// DefaultConfig reports every issue.
func DefaultConfig() DiagnosticConfig { return types.DefaultConfig() }

// WarningsOnly suppresses Info issues.
func WarningsOnly() DiagnosticConfig { return types.WarningsOnly() }

// BuildLineTable indexes the line starts of src.
func BuildLineTable(src []byte) LineTable { return types.BuildLineTable(src) }
