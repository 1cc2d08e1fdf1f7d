package script

import (
	"iter"
	"strings"

	"github.com/gossa/gossa/internal/builtins"
)

// Comment is a ';' or '!' line inside a section. Before is the number of
// records that precede it, which fixes its position on re-emission.
type Comment struct {
	Span   Span
	Before int
}

// Section is a named block of the script.
type Section struct {
	name      string
	header    Span
	nameSpan  Span
	kind      Kind
	schema    *Schema
	records   []*Record
	comments  []Comment
	handle    Handle
	processor SectionProcessor
	data      any
	processed bool
	src       []byte
}

func (s *Section) Name() string { return s.name }

// HeaderSpan covers the "[Name]" line.
func (s *Section) HeaderSpan() Span { return s.header }

// NameSpan covers the name between the brackets.
func (s *Section) NameSpan() Span { return s.nameSpan }

func (s *Section) Kind() Kind { return s.kind }

// Schema returns the first schema in force in a tabular section, nil for
// other kinds. Records carry their own schema when a Format line is
// redeclared mid-section.
func (s *Section) Schema() *Schema { return s.schema }

// Declared reports whether the section has a Format line.
func (s *Section) Declared() bool { return s.schema.Declared() }

func (s *Section) Records() []*Record { return s.records }

func (s *Section) Comments() []Comment { return s.comments }

// Handle identifies the processor bound to an extension section. Zero when
// none was registered.
func (s *Section) Handle() Handle { return s.handle }

// Data returns the processor output stored at parse time. The second
// result is false unless processing was requested when parsing.
func (s *Section) Data() (any, bool) { return s.data, s.processed }

// Span covers the header through the last record or comment.
func (s *Section) Span() Span {
	span := s.header
	if n := len(s.records); n > 0 {
		span = span.Cover(s.records[n-1].Span)
	}
	if n := len(s.comments); n > 0 {
		span = span.Cover(s.comments[n-1].Span)
	}
	return span
}

// Raw returns the view handed to section processors.
func (s *Section) Raw() RawSection {
	return RawSection{Name: s.name, Header: s.header, Records: s.records, Source: s.src}
}

// Process runs the bound processor on demand. When the document was parsed
// with extension processing, the stored result is returned instead. The
// section is not modified.
func (s *Section) Process() (any, error) {
	if s.processed {
		return s.data, nil
	}
	if s.processor == nil {
		return nil, ErrNoProcessor
	}
	return s.processor.Process(s.Raw())
}

// Value returns the value of a key in a key/value section. Keys match
// case-insensitively; the last occurrence wins, as renderers apply them
// in order.
func (s *Section) Value(key string) (string, bool) {
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if !r.Raw && strings.EqualFold(strings.TrimSpace(r.KeywordText()), key) {
			_, v := r.Entry()
			return v, true
		}
	}
	return "", false
}

// Find returns the records whose keyword matches kw, ignoring case.
func (s *Section) Find(kw string) iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, r := range s.records {
			if !r.Raw && r.Is(kw) && !yield(r) {
				return
			}
		}
	}
}

// Style returns the style record with the given name, or nil.
func (s *Section) Style(name string) *Record {
	if !s.kind.IsStyles() {
		return nil
	}
	for r := range s.Find(builtins.KeywordStyle) {
		if n, err := r.String("Name"); err == nil && n == name {
			return r
		}
	}
	return nil
}
