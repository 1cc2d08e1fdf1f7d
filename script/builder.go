package script

// Builder constructs a Document incrementally.
// Use NewBuilder() to create a builder, open sections and add records,
// then call Document() to get the final immutable Document.
//
// This type is intended for internal use by the parser.
// Most users should use the Parse functions from the gossa package instead.
type Builder struct {
	doc *Document
}

// NewBuilder creates a new Builder for a document over src.
func NewBuilder(src []byte) *Builder {
	return &Builder{doc: &Document{src: src, lineEnding: DetectLineEnding(src)}}
}

// Document returns the constructed Document.
// After calling this, the Builder should not be used further.
func (b *Builder) Document() *Document {
	return b.doc
}

// SetBOM records that the source started with a byte order mark.
func (b *Builder) SetBOM(bom bool) {
	b.doc.bom = bom
}

// AddPreamble keeps a line that appeared before the first header.
func (b *Builder) AddPreamble(span Span) {
	b.doc.preamble = append(b.doc.preamble, span)
}

// OpenSection appends a new section. A standard section whose kind is
// already present replaces the earlier one in place; the earlier one is
// returned so the caller can report it.
func (b *Builder) OpenSection(name string, header, nameSpan Span, kind Kind) (sec, replaced *Section) {
	sec = &Section{
		name:     name,
		header:   header,
		nameSpan: nameSpan,
		kind:     kind,
		src:      b.doc.src,
	}
	if kind.IsStandard() {
		for i, s := range b.doc.sections {
			if s.kind == kind {
				b.doc.sections[i] = sec
				return sec, s
			}
		}
	}
	b.doc.sections = append(b.doc.sections, sec)
	return sec, nil
}

// SetSchema sets the section schema if none is set yet.
func (b *Builder) SetSchema(sec *Section, schema *Schema) {
	if sec.schema == nil {
		sec.schema = schema
	}
}

// AddRecord appends a record reconciled against schema (nil for
// untyped records) and returns it.
func (b *Builder) AddRecord(sec *Section, rec Record, schema *Schema) *Record {
	rec.src = b.doc.src
	rec.schema = schema
	r := &rec
	sec.records = append(sec.records, r)
	return r
}

// AddComment appends a comment line after the records added so far.
func (b *Builder) AddComment(sec *Section, span Span) {
	sec.comments = append(sec.comments, Comment{Span: span, Before: len(sec.records)})
}

// Bind attaches a registered processor to an extension section.
func (b *Builder) Bind(sec *Section, h Handle, p SectionProcessor) {
	sec.handle = h
	sec.processor = p
}

// SetData stores a processor result.
func (b *Builder) SetData(sec *Section, data any) {
	sec.data = data
	sec.processed = true
}

// SectionCount returns the number of sections added so far.
func (b *Builder) SectionCount() int {
	return len(b.doc.sections)
}
