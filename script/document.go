package script

import (
	"iter"

	"github.com/gossa/gossa/internal/builtins"
)

// LineEnding is the line terminator style a document was written with.
type LineEnding int

const (
	LineEndingLF LineEnding = iota
	LineEndingCRLF
	LineEndingCR
)

func (e LineEnding) String() string {
	switch e {
	case LineEndingCRLF:
		return "crlf"
	case LineEndingCR:
		return "cr"
	default:
		return "lf"
	}
}

// Sequence returns the terminator bytes.
func (e LineEnding) Sequence() string {
	switch e {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// DetectLineEnding returns the style of the first terminator in src, LF
// when there is none.
func DetectLineEnding(src []byte) LineEnding {
	for i, b := range src {
		switch b {
		case '\n':
			return LineEndingLF
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				return LineEndingCRLF
			}
			return LineEndingCR
		}
	}
	return LineEndingLF
}

// Document is a parsed script. It is immutable once built and safe for
// concurrent reads while its source buffer is kept alive.
type Document struct {
	src        []byte
	sections   []*Section
	preamble   []Span
	lineEnding LineEnding
	bom        bool
}

// Source returns the buffer every span in the document indexes.
func (d *Document) Source() []byte { return d.src }

// Sections returns sections in source order.
func (d *Document) Sections() []*Section { return d.sections }

// Preamble returns the non-blank lines before the first header.
func (d *Document) Preamble() []Span { return d.preamble }

func (d *Document) LineEnding() LineEnding { return d.lineEnding }

// HasBOM reports whether the source started with a UTF-8 byte order mark.
func (d *Document) HasBOM() bool { return d.bom }

// Section returns the first section with the given name, compared the way
// headers are (case and whitespace folded), or nil.
func (d *Document) Section(name string) *Section {
	key := builtins.NormalizeSectionName(name)
	for _, s := range d.sections {
		if builtins.NormalizeSectionName(s.name) == key {
			return s
		}
	}
	return nil
}

// SectionByKind returns the section of a standard kind, or nil.
func (d *Document) SectionByKind(kind Kind) *Section {
	for _, s := range d.sections {
		if s.kind == kind {
			return s
		}
	}
	return nil
}

// ScriptInfo returns the [Script Info] section, or nil.
func (d *Document) ScriptInfo() *Section { return d.SectionByKind(KindScriptInfo) }

// Styles returns the [V4+ Styles] section, falling back to [V4 Styles].
func (d *Document) Styles() *Section {
	if s := d.SectionByKind(KindV4PlusStyles); s != nil {
		return s
	}
	return d.SectionByKind(KindV4Styles)
}

// Events returns the [Events] section, or nil.
func (d *Document) Events() *Section { return d.SectionByKind(KindEvents) }

// Info returns a [Script Info] value by key.
func (d *Document) Info(key string) (string, bool) {
	if s := d.ScriptInfo(); s != nil {
		return s.Value(key)
	}
	return "", false
}

// Style returns the style record with the given name from the styles
// section, or nil.
func (d *Document) Style(name string) *Record {
	if s := d.Styles(); s != nil {
		return s.Style(name)
	}
	return nil
}

// Dialogues yields every non-raw Dialogue record of the events section.
func (d *Document) Dialogues() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		ev := d.Events()
		if ev == nil {
			return
		}
		for r := range ev.Find(builtins.KeywordDialogue) {
			if !yield(r) {
				return
			}
		}
	}
}
