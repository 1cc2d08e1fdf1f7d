// Package builtins holds the static knowledge tables of the script format:
// standard sections, their default field schemas and semantic field types,
// and the override tag vocabulary. Tables are read-only after init.
package builtins

import "strings"

// Kind identifies a standard section, or KindExtension for anything else.
type Kind int

const (
	// KindNone is the state before the first section header.
	KindNone Kind = iota
	// KindScriptInfo is [Script Info]: key/value script properties.
	KindScriptInfo
	// KindV4Styles is [V4 Styles]: SSA style definitions.
	KindV4Styles
	// KindV4PlusStyles is [V4+ Styles]: ASS style definitions.
	KindV4PlusStyles
	// KindEvents is [Events]: dialogue and command lines.
	KindEvents
	// KindFonts is [Fonts]: uuencoded embedded fonts.
	KindFonts
	// KindGraphics is [Graphics]: uuencoded embedded pictures.
	KindGraphics
	// KindExtension is any section not in the standard table.
	KindExtension
)

// Order matches the Kind iota constants.
var kindNames = [...]string{
	"none",
	"Script Info",
	"V4 Styles",
	"V4+ Styles",
	"Events",
	"Fonts",
	"Graphics",
	"extension",
}

// String returns the canonical section name for standard kinds.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsStandard reports whether k is one of the standard section kinds.
func (k Kind) IsStandard() bool {
	return k > KindNone && k < KindExtension
}

// IsTabular reports whether records in this section follow a Format schema.
func (k Kind) IsTabular() bool {
	switch k {
	case KindV4Styles, KindV4PlusStyles, KindEvents:
		return true
	default:
		return false
	}
}

// IsStyles reports whether k is either style section flavor.
func (k Kind) IsStyles() bool {
	return k == KindV4Styles || k == KindV4PlusStyles
}

// IsAttachment reports whether the section carries uuencoded files.
func (k Kind) IsAttachment() bool {
	return k == KindFonts || k == KindGraphics
}

// IsKeyValue reports whether records are "Key: value" pairs.
func (k Kind) IsKeyValue() bool {
	return k == KindScriptInfo || k == KindExtension
}

var sectionByName = map[string]Kind{
	"script info": KindScriptInfo,
	"v4 styles":   KindV4Styles,
	"v4+ styles":  KindV4PlusStyles,
	"v4 styles+":  KindV4PlusStyles,
	"events":      KindEvents,
	"fonts":       KindFonts,
	"graphics":    KindGraphics,
}

// NormalizeSectionName folds case and collapses runs of whitespace so that
// "[script   INFO]" and "[Script Info]" name the same section.
func NormalizeSectionName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// LookupSection returns the standard kind for a section name.
func LookupSection(name string) (Kind, bool) {
	k, ok := sectionByName[NormalizeSectionName(name)]
	return k, ok
}

// Record keywords. Format declares a schema; the rest introduce records.
const (
	KeywordFormat   = "Format"
	KeywordStyle    = "Style"
	KeywordDialogue = "Dialogue"
	KeywordComment  = "Comment"
	KeywordPicture  = "Picture"
	KeywordSound    = "Sound"
	KeywordMovie    = "Movie"
	KeywordCommand  = "Command"
	KeywordFontname = "fontname"
	KeywordFilename = "filename"
)

// recordKeywords is every keyword recognized in tabular sections.
var recordKeywords = []string{
	KeywordFormat,
	KeywordStyle,
	KeywordDialogue,
	KeywordComment,
	KeywordPicture,
	KeywordSound,
	KeywordMovie,
	KeywordCommand,
}

// LookupKeyword returns the canonical spelling of a tabular record keyword.
// Matching is case-insensitive.
func LookupKeyword(text string) (string, bool) {
	for _, kw := range recordKeywords {
		if strings.EqualFold(kw, text) {
			return kw, true
		}
	}
	return "", false
}

// KeywordAllowed reports whether a record keyword may appear in a section
// of the given kind.
func KeywordAllowed(kind Kind, keyword string) bool {
	switch kind {
	case KindV4Styles, KindV4PlusStyles:
		return keyword == KeywordStyle || keyword == KeywordFormat
	case KindEvents:
		switch keyword {
		case KeywordFormat, KeywordDialogue, KeywordComment, KeywordPicture,
			KeywordSound, KeywordMovie, KeywordCommand:
			return true
		}
		return false
	case KindFonts:
		return strings.EqualFold(keyword, KeywordFontname)
	case KindGraphics:
		return strings.EqualFold(keyword, KeywordFilename)
	case KindScriptInfo, KindExtension:
		return true
	default:
		return false
	}
}

// AttachmentKeyword returns the entry keyword for an attachment section.
func AttachmentKeyword(kind Kind) string {
	if kind == KindGraphics {
		return KeywordFilename
	}
	return KeywordFontname
}
