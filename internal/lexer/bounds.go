package lexer

import (
	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/types"
)

// SectionBounds returns one span per section, from its header line to the
// start of the next header (or end of input). Lines before the first
// header are not covered. Used to re-parse a single section after an edit.
func SectionBounds(source []byte) []types.Span {
	return sectionBounds(source, nil)
}

// StyleBounds is SectionBounds limited to [V4+ Styles] and [V4 Styles]
// sections.
func StyleBounds(source []byte) []types.Span {
	return sectionBounds(source, builtins.Kind.IsStyles)
}

func sectionBounds(source []byte, keep func(builtins.Kind) bool) []types.Span {
	l := New(source, nil)
	var bounds []types.Span
	open := false
	for tok := range l.All() {
		if tok.Kind != TokSectionHeader {
			continue
		}
		if n := len(bounds); n > 0 && open {
			bounds[n-1].End = tok.Span.Start
		}
		open = keep == nil || keep(tok.Section)
		if open {
			bounds = append(bounds, types.NewSpan(tok.Span.Start, types.ByteOffset(len(source))))
		}
	}
	return bounds
}

// SectionAt returns the bounds of the section containing offset.
func SectionAt(source []byte, offset types.ByteOffset) (types.Span, bool) {
	for _, b := range SectionBounds(source) {
		if b.Contains(offset) || (offset == b.End && int(b.End) == len(source)) {
			return b, true
		}
	}
	return types.Span{}, false
}
