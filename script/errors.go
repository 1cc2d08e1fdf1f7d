package script

import (
	"errors"
	"fmt"

	"github.com/gossa/gossa/internal/types"
)

var (
	// ErrNoField is returned by accessors for a field the record's schema
	// does not declare, or a raw record without a schema.
	ErrNoField = errors.New("no such field")

	// ErrAlreadyRegistered is returned by Register for a bound pattern.
	ErrAlreadyRegistered = errors.New("section pattern already registered")

	// ErrInvalidPattern is returned by Register for an unusable pattern.
	ErrInvalidPattern = errors.New("invalid section pattern")

	// ErrNoProcessor is returned by Section.Process for a section without
	// a registered processor.
	ErrNoProcessor = errors.New("section has no processor")
)

// ErrEncoding matches a ParseError for an undecodable buffer.
var ErrEncoding = types.ErrEncoding

// FieldError reports a typed accessor failure. It affects only the value
// asked for; the rest of the document is unaffected.
type FieldError struct {
	Field string
	Type  FieldType
	Span  Span
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrNoField) {
		return fmt.Sprintf("field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %q (%s): %v", e.Field, e.Type, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Issue converts the error into a Semantic warning located at the value.
func (e *FieldError) Issue() Issue {
	return Issue{
		Category: types.CategorySemantic,
		Severity: types.SeverityWarning,
		Code:     types.DiagValueInvalid,
		Span:     e.Span,
		Message:  e.Error(),
	}
}
