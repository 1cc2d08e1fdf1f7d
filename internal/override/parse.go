package override

import (
	"bytes"
	"fmt"

	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/types"
)

// parser accumulates segments and markup issues for one text field.
type parser struct {
	src    []byte
	segs   []Segment
	issues []types.Issue
}

// Parse splits the text field covered by span into literal runs, tags and
// block comments. It never fails: unterminated blocks, unknown tags and bad
// arguments are kept and reported as Markup issues.
func Parse(src []byte, span types.Span) ([]Segment, []types.Issue) {
	end := min(int(span.End), len(src))
	start := min(int(span.Start), end)
	p := &parser{src: src}
	p.field(start, end)
	return p.segs, p.issues
}

func (p *parser) field(start, end int) {
	lit := start
	for pos := start; pos < end; {
		switch p.src[pos] {
		case '{':
			p.literal(lit, pos)
			blockEnd, next := end, end
			if idx := bytes.IndexByte(p.src[pos+1:end], '}'); idx >= 0 {
				blockEnd = pos + 1 + idx
				next = blockEnd + 1
			} else {
				p.issue(types.SeverityWarning, types.DiagBlockUnterminated, types.SpanOf(pos, end),
					"override block is not closed and runs to the end of the text", "add a closing '}'")
			}
			p.block(pos+1, blockEnd, next > blockEnd)
			pos = next
			lit = pos
		case '}':
			p.issue(types.SeverityInfo, types.DiagBlockStrayClose, types.SpanOf(pos, pos+1),
				"'}' outside an override block is literal text", "")
			pos++
		default:
			pos++
		}
	}
	p.literal(lit, end)
}

func (p *parser) literal(start, end int) {
	if start < end {
		p.segs = append(p.segs, Segment{Kind: SegLiteral, Span: types.SpanOf(start, end)})
	}
}

func (p *parser) comment(start, end int) {
	if s, e := p.trim(start, end); s < e {
		p.segs = append(p.segs, Segment{Kind: SegComment, Span: types.SpanOf(s, e)})
	}
}

// block handles the content between '{' and '}'. Text that is not part of
// a tag is a comment in a closed block and a literal run in an unterminated
// one.
func (p *parser) block(start, end int, closed bool) {
	text := p.comment
	if !closed {
		text = p.literal
	}
	first := bytes.IndexByte(p.src[start:end], '\\')
	if first < 0 {
		text(start, end)
		return
	}
	text(start, start+first)
	for _, c := range p.candidates(start+first, end) {
		tag, tagEnd := p.tag(int(c.Start), int(c.End))
		if tag == nil {
			p.comment(int(c.Start), int(c.End))
			continue
		}
		p.segs = append(p.segs, Segment{Kind: SegTag, Span: tag.Span, Tag: tag})
		if rs, re := p.trim(tagEnd, int(c.End)); rs < re {
			text(tagEnd, int(c.End))
		}
	}
}

// candidates splits [start, end) on backslashes outside parentheses.
// start must point at a backslash.
func (p *parser) candidates(start, end int) []types.Span {
	var out []types.Span
	depth := 0
	cs := start
	for i := start + 1; i < end; i++ {
		switch p.src[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '\\':
			if depth == 0 {
				out = append(out, types.SpanOf(cs, i))
				cs = i
			}
		}
	}
	return append(out, types.SpanOf(cs, end))
}

// tag parses one candidate starting at its backslash and returns the
// offset where the tag's own text ends; the rest of the candidate is not
// part of the tag. Returns nil for an empty candidate.
func (p *parser) tag(start, end int) (*Tag, int) {
	_, end = p.trim(start, end)
	nameStart := start + 1
	if nameStart >= end {
		p.issue(types.SeverityWarning, types.DiagTagEmpty, types.SpanOf(start, end),
			"backslash without a tag name", "")
		return nil, end
	}
	tag := &Tag{Span: types.SpanOf(start, end)}
	rest := string(p.src[nameStart:end])
	spec, ok := builtins.LongestTag(rest)
	if !ok || !acceptsPrefix(spec, rest) {
		p.unknown(tag, nameStart, end)
		return tag, end
	}
	argStart := nameStart + len(spec.Name)
	tag.Name = spec.Name
	tag.NameSpan = types.SpanOf(nameStart, argStart)
	tag.Known = true
	tagEnd := end
	if spec.Paren {
		tagEnd = p.parenArgs(tag, spec, argStart, end)
	} else {
		tagEnd = p.bareArg(tag, spec, argStart, end)
	}
	tag.Span = types.SpanOf(start, tagEnd)
	return tag, tagEnd
}

// acceptsPrefix rejects a builtin name match that is really the start of a
// longer unknown name, such as \b inside \bogus. String-valued tags (\fn,
// \r) take letters directly after the name.
func acceptsPrefix(spec *builtins.TagSpec, rest string) bool {
	after := rest[len(spec.Name):]
	if after == "" || (!spec.Paren && spec.Args[0] == builtins.ArgString) {
		return true
	}
	return !isLetter(after[0])
}

func (p *parser) unknown(tag *Tag, nameStart, end int) {
	i := nameStart
	if i < end && isDigit(p.src[i]) {
		i++
	}
	for i < end && isLetter(p.src[i]) {
		i++
	}
	tag.Name = string(p.src[nameStart:i])
	tag.NameSpan = types.SpanOf(nameStart, i)
	if as, ae := p.trim(i, end); as < ae {
		tag.Args = []Arg{{Kind: ArgRaw, Span: types.SpanOf(as, ae), Str: string(p.src[as:ae])}}
	}
	p.issue(types.SeverityInfo, types.DiagTagUnknown, tag.Span,
		fmt.Sprintf(`unknown override tag \%s kept verbatim`, tag.Name), "")
}

// bareArg reads the argument after a tag name and returns where it ends.
// String arguments run to the end of the candidate. Other arguments end at
// whitespace, and text separated from the name by whitespace is only an
// argument when it can start one (`\b1 Hello` takes "1", `\b Hello`
// takes nothing).
func (p *parser) bareArg(tag *Tag, spec *builtins.TagSpec, start, end int) int {
	t := spec.Args[0]
	as := p.skipSpace(start, end)
	if t == builtins.ArgString || t == builtins.ArgDrawing {
		if _, ae := p.trim(as, end); as < ae {
			tag.Args = append(tag.Args, p.value(t, as, ae))
			return ae
		}
		return start
	}
	if as == end || (as > start && !startsArg(t, p.src[as])) {
		return start
	}
	ae := as
	for ae < end && !isSpace(p.src[ae]) {
		ae++
	}
	tag.Args = append(tag.Args, p.value(t, as, ae))
	return ae
}

// startsArg reports whether b can begin an argument of type t.
func startsArg(t builtins.ArgType, b byte) bool {
	switch t {
	case builtins.ArgColor, builtins.ArgAlpha:
		return b == '&' || b == 'H' || b == 'h'
	default:
		return isDigit(b) || b == '+' || b == '-' || b == '.'
	}
}

// parenArgs parses a parenthesized argument list and returns where the tag
// ends: after the closing ')', or at end when it is missing.
func (p *parser) parenArgs(tag *Tag, spec *builtins.TagSpec, start, end int) int {
	open := p.skipSpace(start, end)
	if open >= end || p.src[open] != '(' {
		if open < end {
			tag.Args = append(tag.Args, p.raw(open, end))
		}
		p.arity(tag, spec, 0)
		return end
	}
	tagEnd := end
	innerEnd := p.matchParen(open, end)
	if innerEnd < 0 {
		innerEnd = end
		p.issue(types.SeverityWarning, types.DiagTagParenUnclosed, types.SpanOf(int(tag.Span.Start), end),
			fmt.Sprintf(`\%s argument list is missing ')'`, tag.Name), "add a closing ')'")
	} else {
		tagEnd = innerEnd + 1
	}

	switch spec.Name {
	case "t":
		p.transformArgs(tag, spec, open+1, innerEnd)
	case "clip", "iclip":
		p.clipArgs(tag, spec, open+1, innerEnd)
	default:
		pieces := p.splitArgs(open+1, innerEnd)
		for i, pc := range pieces {
			if i < len(spec.Args) {
				tag.Args = append(tag.Args, p.value(spec.Args[i], int(pc.Start), int(pc.End)))
			} else {
				tag.Args = append(tag.Args, p.raw(int(pc.Start), int(pc.End)))
			}
		}
		if !spec.Arity(len(pieces)) {
			p.arity(tag, spec, len(pieces))
		}
	}
	return tagEnd
}

// transformArgs parses \t([t1,t2,][accel,]tags).
func (p *parser) transformArgs(tag *Tag, spec *builtins.TagSpec, start, end int) {
	tagsAt := -1
	depth := 0
scan:
	for i := start; i < end; i++ {
		switch p.src[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '\\':
			if depth == 0 {
				tagsAt = i
				break scan
			}
		}
	}

	numEnd := end
	if tagsAt >= 0 {
		numEnd = tagsAt
	}
	pieces := p.splitArgs(start, numEnd)
	if tagsAt >= 0 && len(pieces) > 0 && pieces[len(pieces)-1].IsEmpty() {
		pieces = pieces[:len(pieces)-1]
	}
	for _, pc := range pieces {
		tag.Args = append(tag.Args, p.value(builtins.ArgFloat, int(pc.Start), int(pc.End)))
	}
	if tagsAt < 0 || len(pieces) > len(spec.Args)-1 {
		p.arity(tag, spec, len(tag.Args))
		if tagsAt < 0 {
			return
		}
	}

	ts, te := p.trim(tagsAt, end)
	nested := Arg{Kind: ArgTags, Span: types.SpanOf(ts, te)}
	for _, c := range p.candidates(ts, te) {
		t, tagEnd := p.tag(int(c.Start), int(c.End))
		if t == nil {
			continue
		}
		nested.Tags = append(nested.Tags, *t)
		if rs, re := p.trim(tagEnd, int(c.End)); rs < re {
			p.issue(types.SeverityWarning, types.DiagTagArgInvalid, types.SpanOf(rs, re),
				fmt.Sprintf(`unexpected text after \%s`, t.Name), "")
		}
	}
	tag.Args = append(tag.Args, nested)
}

// clipArgs parses \clip(x1,y1,x2,y2) and \clip([scale,]drawing).
func (p *parser) clipArgs(tag *Tag, spec *builtins.TagSpec, start, end int) {
	pieces := p.splitArgs(start, end)
	switch len(pieces) {
	case 4:
		for _, pc := range pieces {
			tag.Args = append(tag.Args, p.value(builtins.ArgFloat, int(pc.Start), int(pc.End)))
		}
	case 2:
		tag.Args = append(tag.Args,
			p.value(builtins.ArgInt, int(pieces[0].Start), int(pieces[0].End)),
			p.value(builtins.ArgDrawing, int(pieces[1].Start), int(pieces[1].End)))
	case 1:
		tag.Args = append(tag.Args, p.value(builtins.ArgDrawing, int(pieces[0].Start), int(pieces[0].End)))
	default:
		for _, pc := range pieces {
			tag.Args = append(tag.Args, p.raw(int(pc.Start), int(pc.End)))
		}
		p.arity(tag, spec, len(pieces))
	}
}

// value interprets [start, end) as an argument of type t. Malformed values
// become ArgRaw with a Warning.
func (p *parser) value(t builtins.ArgType, start, end int) Arg {
	span := types.SpanOf(start, end)
	text := string(p.src[start:end])
	switch t {
	case builtins.ArgInt, builtins.ArgFloat:
		n, integral, ok := parseNumber(text)
		if !ok {
			return p.invalid(span, text, "a number")
		}
		kind := ArgFloat
		if t == builtins.ArgInt && integral {
			kind = ArgInt
		}
		return Arg{Kind: kind, Span: span, Num: n}
	case builtins.ArgColor:
		v, ok := parseHex(text)
		if !ok {
			return p.invalid(span, text, "a color like &HBBGGRR&")
		}
		return Arg{Kind: ArgColor, Span: span, Color: v & 0xFFFFFF}
	case builtins.ArgAlpha:
		v, ok := parseHex(text)
		if !ok {
			return p.invalid(span, text, "an alpha like &HAA&")
		}
		return Arg{Kind: ArgAlpha, Span: span, Num: float64(v & 0xFF)}
	case builtins.ArgString, builtins.ArgDrawing:
		return Arg{Kind: ArgString, Span: span, Str: text}
	default:
		return p.raw(start, end)
	}
}

func (p *parser) invalid(span types.Span, text, want string) Arg {
	p.issue(types.SeverityWarning, types.DiagTagArgInvalid, span,
		fmt.Sprintf("argument %q is not %s", text, want), "")
	return Arg{Kind: ArgRaw, Span: span, Str: text}
}

func (p *parser) raw(start, end int) Arg {
	return Arg{Kind: ArgRaw, Span: types.SpanOf(start, end), Str: string(p.src[start:end])}
}

func (p *parser) arity(tag *Tag, spec *builtins.TagSpec, got int) {
	want := fmt.Sprintf("%d", spec.MinArgs)
	if n := len(spec.Args); n != spec.MinArgs {
		want = fmt.Sprintf("%d to %d", spec.MinArgs, n)
	}
	p.issue(types.SeverityWarning, types.DiagTagArity, tag.Span,
		fmt.Sprintf(`\%s takes %s arguments, got %d`, tag.Name, want, got), "")
}

// splitArgs splits [start, end) on commas outside parentheses and trims
// each piece. Returns nil for an empty list.
func (p *parser) splitArgs(start, end int) []types.Span {
	if s, e := p.trim(start, end); s == e {
		return nil
	}
	var out []types.Span
	depth := 0
	ps := start
	for i := start; i < end; i++ {
		switch p.src[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				s, e := p.trim(ps, i)
				out = append(out, types.SpanOf(s, e))
				ps = i + 1
			}
		}
	}
	s, e := p.trim(ps, end)
	return append(out, types.SpanOf(s, e))
}

// matchParen returns the offset of the ')' closing the '(' at open, or -1.
func (p *parser) matchParen(open, end int) int {
	depth := 0
	for i := open; i < end; i++ {
		switch p.src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *parser) issue(sev types.Severity, code string, span types.Span, msg, suggestion string) {
	p.issues = append(p.issues, types.Issue{
		Category:   types.CategoryMarkup,
		Severity:   sev,
		Code:       code,
		Span:       span,
		Message:    msg,
		Suggestion: suggestion,
	})
}

func (p *parser) skipSpace(start, end int) int {
	for start < end && isSpace(p.src[start]) {
		start++
	}
	return start
}

func (p *parser) trim(start, end int) (int, int) {
	start = p.skipSpace(start, end)
	for end > start && isSpace(p.src[end-1]) {
		end--
	}
	return start, end
}
