package script

import (
	"strings"
	"time"

	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/override"
)

// Record is one data line of a section. Field values are untyped spans;
// the accessors interpret them on demand using the record's schema, so a
// value that fails to parse never affects the rest of the document.
type Record struct {
	// Keyword is the line's keyword ("Dialogue"), key ("Title") or
	// attachment entry keyword ("fontname"). Empty for raw malformed lines
	// and attachment payload lines.
	Keyword Span
	// Fields holds one span per schema field for tabular records, the
	// value for key/value records and attachment entries, and the trimmed
	// line for payload lines.
	Fields []Span
	// Span covers the whole line without its terminator.
	Span Span
	// Raw records are kept verbatim for round-trip fidelity only: malformed
	// lines, records whose keyword does not belong in the section, and
	// records after an unusable Format line.
	Raw bool
	// Data marks an attachment payload line.
	Data bool

	src    []byte
	schema *Schema
}

// Schema returns the schema the record was reconciled against, nil for
// key/value, attachment and raw records.
func (r *Record) Schema() *Schema { return r.schema }

// Source returns the buffer the record's spans index.
func (r *Record) Source() []byte { return r.src }

// KeywordText returns the keyword as written.
func (r *Record) KeywordText() string { return r.Keyword.Text(r.src) }

// Line returns the whole source line.
func (r *Record) Line() string { return r.Span.Text(r.src) }

// Is reports whether the record's keyword matches kw, ignoring case.
func (r *Record) Is(kw string) bool {
	return strings.EqualFold(r.KeywordText(), kw)
}

// Entry returns the key and value of a key/value record.
func (r *Record) Entry() (key, value string) {
	if len(r.Fields) == 0 {
		return r.KeywordText(), ""
	}
	return r.KeywordText(), r.Fields[0].Text(r.src)
}

// FieldAt returns the span of the i-th field.
func (r *Record) FieldAt(i int) (Span, bool) {
	if i < 0 || i >= len(r.Fields) {
		return Span{}, false
	}
	return r.Fields[i], true
}

// Field returns the span of the named field.
func (r *Record) Field(name string) (Span, bool) {
	if r.Raw || r.schema == nil {
		return Span{}, false
	}
	i, ok := r.schema.Index(name)
	if !ok {
		return Span{}, false
	}
	return r.FieldAt(i)
}

// lookup resolves a field for a typed accessor.
func (r *Record) lookup(name string) (string, Span, FieldType, error) {
	span, ok := r.Field(name)
	if !ok {
		return "", Span{}, builtins.FieldString, &FieldError{Field: name, Err: ErrNoField}
	}
	i, _ := r.schema.Index(name)
	return span.Text(r.src), span, r.schema.FieldType(i), nil
}

func (r *Record) fail(name string, t FieldType, span Span, value string, err error) *FieldError {
	return &FieldError{Field: name, Type: t, Span: span, Value: value, Err: err}
}

// String returns the named field's text. Text fields are returned verbatim.
func (r *Record) String(name string) (string, error) {
	text, _, _, err := r.lookup(name)
	return text, err
}

// Int returns the named field as an integer.
func (r *Record) Int(name string) (int, error) {
	text, span, t, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	n, err := ParseInt(text)
	if err != nil {
		return 0, r.fail(name, t, span, text, err)
	}
	return n, nil
}

// Float returns the named field as a number.
func (r *Record) Float(name string) (float64, error) {
	text, span, t, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	f, err := ParseFloat(text)
	if err != nil {
		return 0, r.fail(name, t, span, text, err)
	}
	return f, nil
}

// Bool returns the named field as a boolean.
func (r *Record) Bool(name string) (bool, error) {
	text, span, t, err := r.lookup(name)
	if err != nil {
		return false, err
	}
	b, err := ParseBool(text)
	if err != nil {
		return false, r.fail(name, t, span, text, err)
	}
	return b, nil
}

// Time returns the named field as a duration from the start of the video.
func (r *Record) Time(name string) (time.Duration, error) {
	text, span, t, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	d, err := ParseTime(text)
	if err != nil {
		return 0, r.fail(name, t, span, text, err)
	}
	return d, nil
}

// Color returns the named field as a color.
func (r *Record) Color(name string) (Color, error) {
	text, span, t, err := r.lookup(name)
	if err != nil {
		return Color{}, err
	}
	c, err := ParseColor(text)
	if err != nil {
		return Color{}, r.fail(name, t, span, text, err)
	}
	return c, nil
}

// Alignment returns the named field as a numpad alignment. Records of a
// [V4 Styles] section use the legacy SSA numbering.
func (r *Record) Alignment(name string) (Alignment, error) {
	text, span, t, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	a, err := ParseAlignment(text, r.schema.Kind() == KindV4Styles)
	if err != nil {
		return 0, r.fail(name, t, span, text, err)
	}
	return a, nil
}

// StyleRef returns the style name the named field refers to. A leading
// '*' (written by some editors) is dropped.
func (r *Record) StyleRef(name string) (string, error) {
	text, _, _, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.TrimSpace(text), "*"), nil
}

// Value interprets the named field according to its semantic type and
// returns int, float64, bool, time.Duration, Color, Alignment or string.
func (r *Record) Value(name string) (any, error) {
	_, _, t, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	switch t {
	case builtins.FieldInt:
		return r.Int(name)
	case builtins.FieldFloat:
		return r.Float(name)
	case builtins.FieldBool:
		return r.Bool(name)
	case builtins.FieldTime:
		return r.Time(name)
	case builtins.FieldColor:
		return r.Color(name)
	case builtins.FieldAlignment:
		return r.Alignment(name)
	case builtins.FieldStyleRef:
		return r.StyleRef(name)
	default:
		return r.String(name)
	}
}

// TextField returns the name of the record's text field: the last field of
// type Text in its schema, or "" when there is none.
func (r *Record) TextField() string {
	for i := r.schema.Len() - 1; i >= 0; i-- {
		if r.schema.FieldType(i) == builtins.FieldText {
			return r.schema.Name(i)
		}
	}
	return ""
}

// Segments parses the record's text field into override segments. The
// result is computed on each call and never cached on the record.
func (r *Record) Segments() ([]Segment, []Issue) {
	name := r.TextField()
	if name == "" {
		return nil, nil
	}
	span, ok := r.Field(name)
	if !ok {
		return nil, nil
	}
	return override.Parse(r.src, span)
}

// PlainText returns the text field with tags and block comments removed
// and escapes resolved.
func (r *Record) PlainText() string {
	segs, _ := r.Segments()
	return override.PlainText(r.src, segs)
}
