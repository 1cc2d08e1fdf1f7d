package script

import (
	"slices"
	"strings"

	"github.com/gossa/gossa/internal/builtins"
)

// Schema is the ordered field list in force for a tabular section,
// resolved from the section's Format line or the builtin default. Name
// lookups are case-insensitive.
type Schema struct {
	kind     Kind
	names    []string
	index    map[string]int
	span     Span
	declared bool
}

// NewSchema returns a schema for records of the given section kind. When
// a name repeats, lookups resolve to its first position.
func NewSchema(kind Kind, names []string) *Schema {
	s := &Schema{
		kind:  kind,
		names: slices.Clone(names),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		key := strings.ToLower(n)
		if _, dup := s.index[key]; !dup {
			s.index[key] = i
		}
	}
	return s
}

// DeclaredSchema returns a schema read from a Format line at span.
func DeclaredSchema(kind Kind, names []string, span Span) *Schema {
	s := NewSchema(kind, names)
	s.span = span
	s.declared = true
	return s
}

// DefaultSchema returns the builtin schema for kind, or nil for sections
// without one.
func DefaultSchema(kind Kind) *Schema {
	names := builtins.DefaultSchema(kind)
	if names == nil {
		return nil
	}
	return NewSchema(kind, names)
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns a copy of the field names in order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// Name returns the i-th field name, or "" when out of range.
func (s *Schema) Name(i int) string {
	if s == nil || i < 0 || i >= len(s.names) {
		return ""
	}
	return s.names[i]
}

// Index returns the position of a field by case-insensitive name.
func (s *Schema) Index(name string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// FieldType returns the semantic type of the i-th field.
func (s *Schema) FieldType(i int) FieldType {
	t, _ := builtins.LookupFieldType(s.Kind(), s.Name(i))
	return t
}

func (s *Schema) Kind() Kind {
	if s == nil {
		return KindNone
	}
	return s.kind
}

// Declared reports whether the schema came from a Format line.
func (s *Schema) Declared() bool { return s != nil && s.declared }

// Span returns the Format line, empty for default schemas.
func (s *Schema) Span() Span {
	if s == nil {
		return Span{}
	}
	return s.span
}

// Equal reports whether both schemas list the same names in order.
func (s *Schema) Equal(o *Schema) bool {
	return slices.Equal(s.Names(), o.Names())
}
