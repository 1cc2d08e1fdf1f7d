package builtins

import (
	"sort"
	"strings"
)

// ArgType is the expected shape of one override tag argument.
type ArgType int

const (
	ArgInt     ArgType = iota // integer
	ArgFloat                  // integer or fractional number
	ArgColor                  // &HBBGGRR&
	ArgAlpha                  // &HAA&
	ArgString                 // free text up to the next tag
	ArgTags                   // nested override tag list (\t)
	ArgDrawing                // vector drawing commands (\clip, \iclip)
)

func (a ArgType) String() string {
	switch a {
	case ArgInt:
		return "int"
	case ArgFloat:
		return "float"
	case ArgColor:
		return "color"
	case ArgAlpha:
		return "alpha"
	case ArgString:
		return "string"
	case ArgTags:
		return "tags"
	case ArgDrawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// TagSpec describes a recognized override tag.
type TagSpec struct {
	Name string
	// Args lists argument types in order. Paren tags may accept fewer
	// (down to MinArgs); bare tags take at most one argument.
	Args    []ArgType
	MinArgs int
	// Paren is true for tags whose arguments are a parenthesized list.
	Paren bool
	// Animatable tags may appear inside \t.
	Animatable bool
}

// Arity reports whether n arguments satisfy the spec.
func (s *TagSpec) Arity(n int) bool {
	return n >= s.MinArgs && n <= len(s.Args)
}

func bare(name string, arg ArgType, animatable bool) TagSpec {
	return TagSpec{Name: name, Args: []ArgType{arg}, Animatable: animatable}
}

func paren(name string, min int, animatable bool, args ...ArgType) TagSpec {
	return TagSpec{Name: name, Args: args, MinArgs: min, Paren: true, Animatable: animatable}
}

// tagSpecs is the full override tag vocabulary.
var tagSpecs = []TagSpec{
	bare("b", ArgInt, false),
	bare("i", ArgInt, false),
	bare("u", ArgInt, false),
	bare("s", ArgInt, false),
	bare("bord", ArgFloat, true),
	bare("xbord", ArgFloat, true),
	bare("ybord", ArgFloat, true),
	bare("shad", ArgFloat, true),
	bare("xshad", ArgFloat, true),
	bare("yshad", ArgFloat, true),
	bare("be", ArgFloat, true),
	bare("blur", ArgFloat, true),
	bare("fn", ArgString, false),
	bare("fs", ArgFloat, true),
	bare("fscx", ArgFloat, true),
	bare("fscy", ArgFloat, true),
	bare("fsp", ArgFloat, true),
	bare("fr", ArgFloat, true),
	bare("frx", ArgFloat, true),
	bare("fry", ArgFloat, true),
	bare("frz", ArgFloat, true),
	bare("fax", ArgFloat, true),
	bare("fay", ArgFloat, true),
	bare("fe", ArgInt, false),
	bare("c", ArgColor, true),
	bare("1c", ArgColor, true),
	bare("2c", ArgColor, true),
	bare("3c", ArgColor, true),
	bare("4c", ArgColor, true),
	bare("alpha", ArgAlpha, true),
	bare("1a", ArgAlpha, true),
	bare("2a", ArgAlpha, true),
	bare("3a", ArgAlpha, true),
	bare("4a", ArgAlpha, true),
	bare("an", ArgInt, false),
	bare("a", ArgInt, false),
	bare("k", ArgInt, false),
	bare("K", ArgInt, false),
	bare("kf", ArgInt, false),
	bare("ko", ArgInt, false),
	bare("kt", ArgInt, false),
	bare("q", ArgInt, false),
	bare("r", ArgString, false),
	bare("p", ArgInt, false),
	bare("pbo", ArgFloat, false),
	paren("pos", 2, false, ArgFloat, ArgFloat),
	paren("org", 2, false, ArgFloat, ArgFloat),
	paren("move", 4, false, ArgFloat, ArgFloat, ArgFloat, ArgFloat, ArgInt, ArgInt),
	paren("fad", 2, false, ArgInt, ArgInt),
	paren("fade", 7, false, ArgInt, ArgInt, ArgInt, ArgInt, ArgInt, ArgInt, ArgInt),
	// \t([t1,t2,][accel,]tags): numbers are optional, tags are last.
	paren("t", 1, false, ArgFloat, ArgFloat, ArgFloat, ArgTags),
	// \clip(x1,y1,x2,y2) or \clip([scale,]drawing).
	paren("clip", 1, true, ArgFloat, ArgFloat, ArgFloat, ArgFloat),
	paren("iclip", 1, true, ArgFloat, ArgFloat, ArgFloat, ArgFloat),
}

var tagByName = func() map[string]*TagSpec {
	m := make(map[string]*TagSpec, len(tagSpecs))
	for i := range tagSpecs {
		m[tagSpecs[i].Name] = &tagSpecs[i]
	}
	return m
}()

// tagNamesByLength is sorted longest first so that prefix matching finds
// "fscx" before "fs" and "iclip" before "i".
var tagNamesByLength = func() []string {
	names := make([]string, 0, len(tagSpecs))
	for _, s := range tagSpecs {
		names = append(names, s.Name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

// LookupTag returns the spec for an exact tag name. Tag names are
// case-sensitive (\k and \K differ).
func LookupTag(name string) (*TagSpec, bool) {
	s, ok := tagByName[name]
	return s, ok
}

// LongestTag returns the spec of the longest known tag name that prefixes
// candidate, the text following a backslash.
func LongestTag(candidate string) (*TagSpec, bool) {
	for _, name := range tagNamesByLength {
		if strings.HasPrefix(candidate, name) {
			return tagByName[name], true
		}
	}
	return nil, false
}

// TagNames returns all known tag names in table order.
func TagNames() []string {
	names := make([]string, len(tagSpecs))
	for i, s := range tagSpecs {
		names[i] = s.Name
	}
	return names
}
