// Package aegisub provides section processors for the private sections
// the Aegisub editor writes into scripts.
//
//	reg := gossa.NewRegistry()
//	aegisub.Register(reg)
//	res, err := gossa.ParseWithIssues(src, gossa.WithRegistry(reg), gossa.WithProcessExtensions())
package aegisub

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gossa/gossa/internal/types"
	"github.com/gossa/gossa/script"
)

// Section names handled by this package.
const (
	ProjectGarbageSection = "Aegisub Project Garbage"
	ExtradataSection      = "Aegisub Extradata"
)

// Register binds both processors.
func Register(reg *script.Registry) error {
	if _, err := reg.Register(ProjectGarbageSection, ProjectGarbage{}); err != nil {
		return err
	}
	if _, err := reg.Register(ExtradataSection, Extradata{}); err != nil {
		return err
	}
	return nil
}

// Project holds the editor state saved with a script.
type Project struct {
	AudioFile         string
	VideoFile         string
	TimecodesFile     string
	KeyframesFile     string
	VideoARMode       int
	VideoARValue      float64
	VideoZoomPercent  float64
	ScrollPosition    int
	ActiveLine        int
	VideoPosition     int
	AutomationScripts []string
	// Other holds keys this package does not interpret, last value wins.
	Other map[string]string
}

type projectField struct {
	typ valueType
	set func(*Project, string) error
}

type valueType int

const (
	typeString valueType = iota
	typeInt
	typeFloat
)

func intField(dst func(*Project) *int) projectField {
	return projectField{typ: typeInt, set: func(p *Project, v string) error {
		n, err := script.ParseInt(v)
		if err == nil {
			*dst(p) = n
		}
		return err
	}}
}

func floatField(dst func(*Project) *float64) projectField {
	return projectField{typ: typeFloat, set: func(p *Project, v string) error {
		f, err := script.ParseFloat(v)
		if err == nil {
			*dst(p) = f
		}
		return err
	}}
}

func stringField(dst func(*Project) *string) projectField {
	return projectField{typ: typeString, set: func(p *Project, v string) error {
		*dst(p) = v
		return nil
	}}
}

var projectFields = map[string]projectField{
	"audio file":         stringField(func(p *Project) *string { return &p.AudioFile }),
	"video file":         stringField(func(p *Project) *string { return &p.VideoFile }),
	"timecodes file":     stringField(func(p *Project) *string { return &p.TimecodesFile }),
	"keyframes file":     stringField(func(p *Project) *string { return &p.KeyframesFile }),
	"video ar mode":      intField(func(p *Project) *int { return &p.VideoARMode }),
	"video ar value":     floatField(func(p *Project) *float64 { return &p.VideoARValue }),
	"video zoom percent": floatField(func(p *Project) *float64 { return &p.VideoZoomPercent }),
	"scroll position":    intField(func(p *Project) *int { return &p.ScrollPosition }),
	"active line":        intField(func(p *Project) *int { return &p.ActiveLine }),
	"video position":     intField(func(p *Project) *int { return &p.VideoPosition }),
	"automation scripts": {typ: typeString, set: func(p *Project, v string) error {
		for _, s := range strings.Split(v, "|") {
			if s = strings.TrimSpace(s); s != "" {
				p.AutomationScripts = append(p.AutomationScripts, s)
			}
		}
		return nil
	}},
}

// ProjectGarbage processes [Aegisub Project Garbage].
type ProjectGarbage struct{}

// Validate reports lines that are not key/value pairs and numeric keys
// whose value does not parse.
func (ProjectGarbage) Validate(s script.RawSection) []script.Issue {
	var issues []script.Issue
	for _, r := range s.Records {
		if r.Raw {
			issues = append(issues, invalid(r.Span, "line is not a \"Key: value\" pair"))
			continue
		}
		key, value := r.Entry()
		f, ok := projectFields[strings.ToLower(key)]
		if !ok || f.typ == typeString || value == "" {
			continue
		}
		if err := f.set(&Project{}, value); err != nil {
			issues = append(issues, invalid(r.Fields[0], fmt.Sprintf("%s: %v", key, err)))
		}
	}
	return issues
}

// Process returns a *Project. Values that fail to parse are left zero.
func (ProjectGarbage) Process(s script.RawSection) (any, error) {
	p := &Project{Other: make(map[string]string)}
	for key, value := range s.Entries() {
		f, ok := projectFields[strings.ToLower(key)]
		if !ok {
			p.Other[key] = value
			continue
		}
		_ = f.set(p, value)
	}
	return p, nil
}

// Entry is one extradata value attached to event lines by id.
type Entry struct {
	ID    int
	Key   string
	Value []byte
}

// Extradata processes [Aegisub Extradata]. Each record is
// "Data: id,key,value" where value starts with 'e' for the inline escaped
// form or 'u' for the attachment encoding.
type Extradata struct{}

func (Extradata) Validate(s script.RawSection) []script.Issue {
	var issues []script.Issue
	for _, r := range s.Records {
		if r.Raw {
			issues = append(issues, invalid(r.Span, "line is not a \"Data:\" record"))
			continue
		}
		if _, err := parseEntry(r); err != nil {
			span := r.Span
			if len(r.Fields) > 0 {
				span = r.Fields[0]
			}
			issues = append(issues, invalid(span, err.Error()))
		}
	}
	return issues
}

// Process returns []Entry in source order. It fails on the first record
// that does not decode.
func (Extradata) Process(s script.RawSection) (any, error) {
	var entries []Entry
	for _, r := range s.Records {
		if r.Raw {
			continue
		}
		e, err := parseEntry(r)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", r.Line(), err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseEntry(r *script.Record) (Entry, error) {
	key, value := r.Entry()
	if !strings.EqualFold(key, "Data") {
		return Entry{}, fmt.Errorf("unexpected key %q", key)
	}
	idText, rest, ok1 := strings.Cut(value, ",")
	name, encoded, ok2 := strings.Cut(rest, ",")
	if !ok1 || !ok2 {
		return Entry{}, fmt.Errorf("%w: want id,key,value", script.ErrInvalidValue)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil || id < 0 {
		return Entry{}, fmt.Errorf("%w: bad id %q", script.ErrInvalidValue, idText)
	}
	data, err := decodeValue(encoded)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: id, Key: unescape(name), Value: data}, nil
}

func decodeValue(v string) ([]byte, error) {
	if v == "" {
		return nil, fmt.Errorf("%w: empty value", script.ErrInvalidValue)
	}
	switch v[0] {
	case 'e':
		return []byte(unescape(v[1:])), nil
	case 'u':
		return script.Uudecode([]byte(v[1:]))
	default:
		return nil, fmt.Errorf("%w: unknown value encoding %q", script.ErrInvalidValue, v[0])
	}
}

// unescape resolves #XX hex escapes. Malformed escapes are kept literally.
func unescape(s string) string {
	if !strings.Contains(s, "#") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && i+2 < len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(n))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Escape encodes s in the inline form, escaping control characters and
// the delimiters "#,:|".
func Escape(s string) string {
	var b strings.Builder
	b.WriteByte('e')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 32 || c == '#' || c == ',' || c == ':' || c == '|' {
			fmt.Fprintf(&b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func invalid(span script.Span, msg string) script.Issue {
	return script.Issue{
		Category: types.CategoryExtension,
		Severity: types.SeverityWarning,
		Code:     types.DiagExtensionInvalid,
		Span:     span,
		Message:  msg,
	}
}
