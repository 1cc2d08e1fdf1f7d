package builtins

import "strings"

// FieldType is the semantic type of a record field, used by typed accessors.
type FieldType int

const (
	FieldString    FieldType = iota // opaque text, trimmed
	FieldText                       // event text with override markup, verbatim
	FieldInt                        // decimal integer
	FieldFloat                      // decimal number
	FieldBool                       // -1/0 in styles, yes/no in script info
	FieldTime                       // H:MM:SS.cc
	FieldColor                      // &HAABBGGRR or decimal
	FieldAlignment                  // numpad (1-9) or legacy SSA alignment
	FieldStyleRef                   // name of a style in the styles section
)

func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldText:
		return "text"
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldBool:
		return "bool"
	case FieldTime:
		return "time"
	case FieldColor:
		return "color"
	case FieldAlignment:
		return "alignment"
	case FieldStyleRef:
		return "style"
	default:
		return "unknown"
	}
}

var v4PlusStyleSchema = []string{
	"Name", "Fontname", "Fontsize", "PrimaryColour", "SecondaryColour",
	"OutlineColour", "BackColour", "Bold", "Italic", "Underline", "StrikeOut",
	"ScaleX", "ScaleY", "Spacing", "Angle", "BorderStyle", "Outline", "Shadow",
	"Alignment", "MarginL", "MarginR", "MarginV", "Encoding",
}

var v4StyleSchema = []string{
	"Name", "Fontname", "Fontsize", "PrimaryColour", "SecondaryColour",
	"TertiaryColour", "BackColour", "Bold", "Italic", "BorderStyle", "Outline",
	"Shadow", "Alignment", "MarginL", "MarginR", "MarginV", "AlphaLevel",
	"Encoding",
}

var eventSchema = []string{
	"Layer", "Start", "End", "Style", "Name", "MarginL", "MarginR", "MarginV",
	"Effect", "Text",
}

// DefaultSchema returns the field names used when a tabular section has no
// Format line. Returns nil for sections without a schema. The returned
// slice must not be modified.
func DefaultSchema(kind Kind) []string {
	switch kind {
	case KindV4PlusStyles:
		return v4PlusStyleSchema
	case KindV4Styles:
		return v4StyleSchema
	case KindEvents:
		return eventSchema
	default:
		return nil
	}
}

// RequiredFields lists the fields a Format line must declare for records of
// the section to be usable.
func RequiredFields(kind Kind) []string {
	switch kind {
	case KindV4Styles, KindV4PlusStyles:
		return []string{"Name"}
	case KindEvents:
		return []string{"Start", "End", "Style", "Text"}
	default:
		return nil
	}
}

var styleFieldTypes = map[string]FieldType{
	"name":            FieldString,
	"fontname":        FieldString,
	"fontsize":        FieldFloat,
	"primarycolour":   FieldColor,
	"secondarycolour": FieldColor,
	"outlinecolour":   FieldColor,
	"tertiarycolour":  FieldColor,
	"backcolour":      FieldColor,
	"bold":            FieldBool,
	"italic":          FieldBool,
	"underline":       FieldBool,
	"strikeout":       FieldBool,
	"scalex":          FieldFloat,
	"scaley":          FieldFloat,
	"spacing":         FieldFloat,
	"angle":           FieldFloat,
	"borderstyle":     FieldInt,
	"outline":         FieldFloat,
	"shadow":          FieldFloat,
	"alignment":       FieldAlignment,
	"marginl":         FieldInt,
	"marginr":         FieldInt,
	"marginv":         FieldInt,
	"alphalevel":      FieldInt,
	"encoding":        FieldInt,
}

var eventFieldTypes = map[string]FieldType{
	"layer":   FieldInt,
	"marked":  FieldString,
	"start":   FieldTime,
	"end":     FieldTime,
	"style":   FieldStyleRef,
	"name":    FieldString,
	"actor":   FieldString,
	"marginl": FieldInt,
	"marginr": FieldInt,
	"marginv": FieldInt,
	"effect":  FieldString,
	"text":    FieldText,
}

var scriptInfoTypes = map[string]FieldType{
	"playresx":              FieldInt,
	"playresy":              FieldInt,
	"playdepth":             FieldInt,
	"layoutresx":            FieldInt,
	"layoutresy":            FieldInt,
	"wrapstyle":             FieldInt,
	"timer":                 FieldFloat,
	"scaledborderandshadow": FieldBool,
	"kerning":               FieldBool,
}

// LookupFieldType returns the semantic type of a named field in a section
// of the given kind. The second result is false for fields the format does
// not define; such fields are treated as strings.
func LookupFieldType(kind Kind, field string) (FieldType, bool) {
	key := strings.ToLower(strings.TrimSpace(field))
	var t FieldType
	var ok bool
	switch kind {
	case KindV4Styles, KindV4PlusStyles:
		t, ok = styleFieldTypes[key]
	case KindEvents:
		t, ok = eventFieldTypes[key]
	case KindScriptInfo:
		t, ok = scriptInfoTypes[key]
	}
	if !ok {
		return FieldString, false
	}
	return t, true
}

// KnownScriptTypes are the ScriptType values renderers understand.
var KnownScriptTypes = []string{"v4.00", "v4.00+"}
