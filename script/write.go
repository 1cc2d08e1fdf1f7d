package script

import (
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteTo writes the document back as script text using its original line
// ending. Unknown tags, raw lines and extension sections are emitted
// verbatim; tabular records are re-joined from their fields.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Bytes())
	return int64(n), err
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	e := emitter{src: d.src, eol: d.lineEnding.Sequence()}
	e.buf.Grow(len(d.src) + len(d.src)/16)
	if d.bom {
		e.buf.Write(utf8BOM)
	}
	for _, p := range d.preamble {
		e.line(p.Bytes(d.src))
	}
	for i, s := range d.sections {
		if i > 0 || len(d.preamble) > 0 {
			e.newline()
		}
		e.section(s)
	}
	return e.buf.Bytes()
}

type emitter struct {
	buf bytes.Buffer
	src []byte
	eol string
}

func (e *emitter) newline() {
	e.buf.WriteString(e.eol)
}

func (e *emitter) line(b []byte) {
	e.buf.Write(b)
	e.newline()
}

func (e *emitter) section(s *Section) {
	e.buf.WriteByte('[')
	e.buf.WriteString(s.name)
	e.buf.WriteByte(']')
	e.newline()

	var current *Schema
	if s.schema.Declared() {
		e.format(s.schema)
		current = s.schema
	}
	ci := 0
	for i, r := range s.records {
		for ci < len(s.comments) && s.comments[ci].Before <= i {
			e.line(s.comments[ci].Span.Bytes(e.src))
			ci++
		}
		if r.schema != nil && r.schema != current && r.schema.Declared() {
			e.format(r.schema)
			current = r.schema
		}
		e.record(s, r)
	}
	for ; ci < len(s.comments); ci++ {
		e.line(s.comments[ci].Span.Bytes(e.src))
	}
}

func (e *emitter) format(schema *Schema) {
	e.buf.WriteString("Format: ")
	for i, n := range schema.names {
		if i > 0 {
			e.buf.WriteString(", ")
		}
		e.buf.WriteString(n)
	}
	e.newline()
}

func (e *emitter) record(s *Section, r *Record) {
	switch {
	case r.Raw:
		e.line(r.Span.Bytes(e.src))
	case r.Data:
		if len(r.Fields) > 0 {
			e.line(r.Fields[0].Bytes(e.src))
		}
	default:
		e.buf.Write(r.Keyword.Bytes(e.src))
		e.buf.WriteString(": ")
		for i, f := range r.Fields {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.buf.Write(f.Bytes(e.src))
		}
		e.newline()
	}
}
