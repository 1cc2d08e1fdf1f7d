package main

import (
	"github.com/gossa/gossa"
	"github.com/gossa/gossa/script"
)

// DumpOutput is the top-level output for the dump command.
type DumpOutput struct {
	Files []DocumentJSON `json:"files" yaml:"files"`
}

// DocumentJSON holds the serializable form of one parsed script.
type DocumentJSON struct {
	Path        string           `json:"path" yaml:"path"`
	LineEnding  string           `json:"lineEnding,omitempty" yaml:"lineEnding,omitempty"`
	BOM         bool             `json:"bom,omitempty" yaml:"bom,omitempty"`
	Preamble    []string         `json:"preamble,omitempty" yaml:"preamble,omitempty"`
	Sections    []SectionJSON    `json:"sections,omitempty" yaml:"sections,omitempty"`
	Attachments []AttachmentJSON `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Issues      []IssueJSON      `json:"issues,omitempty" yaml:"issues,omitempty"`
	Errors      []IssueJSON      `json:"errors,omitempty" yaml:"errors,omitempty"`
	// Error is set when the file could not be read or decoded.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SectionJSON holds one section.
type SectionJSON struct {
	Name     string       `json:"name" yaml:"name"`
	Kind     string       `json:"kind" yaml:"kind"`
	Line     int          `json:"line" yaml:"line"`
	Format   []string     `json:"format,omitempty" yaml:"format,omitempty"`
	Records  []RecordJSON `json:"records,omitempty" yaml:"records,omitempty"`
	Comments []string     `json:"comments,omitempty" yaml:"comments,omitempty"`
	Data     any          `json:"data,omitempty" yaml:"data,omitempty"`
}

// RecordJSON holds one data line. Tabular records list their fields in
// schema order; key/value records carry a single unnamed field.
type RecordJSON struct {
	Line    int         `json:"line" yaml:"line"`
	Keyword string      `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Fields  []FieldJSON `json:"fields,omitempty" yaml:"fields,omitempty"`
	Text    string      `json:"text,omitempty" yaml:"text,omitempty"`
	Raw     string      `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// FieldJSON is one named field value.
type FieldJSON struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Value string `json:"value" yaml:"value"`
}

// AttachmentJSON describes an embedded file without its payload.
type AttachmentJSON struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Line  int    `json:"line" yaml:"line"`
	Size  int    `json:"size" yaml:"size"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// IssueJSON holds an issue or a parse error.
type IssueJSON struct {
	Line       int    `json:"line" yaml:"line"`
	Column     int    `json:"column" yaml:"column"`
	Severity   string `json:"severity" yaml:"severity"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	Code       string `json:"code" yaml:"code"`
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// dumpOptions controls what gets included in output.
type dumpOptions struct {
	IncludeIssues bool
	IncludeText   bool
}

func buildDocumentJSON(fr gossa.FileResult, opts dumpOptions) DocumentJSON {
	out := DocumentJSON{Path: fr.Path}
	if fr.Err != nil {
		out.Error = fr.Err.Error()
		return out
	}

	doc := fr.Result.Document
	src := doc.Source()
	lines := gossa.BuildLineTable(src)
	lineOf := func(s gossa.Span) int {
		line, _ := lines.LineCol(s.Start)
		return line
	}

	out.LineEnding = doc.LineEnding().String()
	out.BOM = doc.HasBOM()
	for _, p := range doc.Preamble() {
		out.Preamble = append(out.Preamble, p.Text(src))
	}

	for _, sec := range doc.Sections() {
		sj := SectionJSON{
			Name: sec.Name(),
			Kind: sec.Kind().String(),
			Line: lineOf(sec.HeaderSpan()),
		}
		if sec.Declared() {
			sj.Format = sec.Schema().Names()
		}
		for _, r := range sec.Records() {
			sj.Records = append(sj.Records, buildRecordJSON(r, lineOf(r.Span), opts))
		}
		for _, cm := range sec.Comments() {
			sj.Comments = append(sj.Comments, cm.Span.Text(src))
		}
		if data, ok := sec.Data(); ok {
			sj.Data = data
		}
		out.Sections = append(out.Sections, sj)
	}

	for _, a := range doc.Attachments() {
		aj := AttachmentJSON{Name: a.Name, Kind: a.Kind.String(), Line: lineOf(a.Span)}
		if data, err := a.Decode(); err != nil {
			aj.Error = err.Error()
		} else {
			aj.Size = len(data)
		}
		out.Attachments = append(out.Attachments, aj)
	}

	if opts.IncludeIssues {
		for _, is := range fr.Result.Issues {
			line, col := lines.LineCol(is.Span.Start)
			out.Issues = append(out.Issues, IssueJSON{
				Line:       line,
				Column:     col,
				Severity:   is.Severity.String(),
				Category:   is.Category.String(),
				Code:       is.Code,
				Message:    is.Message,
				Suggestion: is.Suggestion,
			})
		}
		for _, e := range fr.Result.Errors {
			line, col := lines.LineCol(e.Span.Start)
			out.Errors = append(out.Errors, IssueJSON{
				Line:     line,
				Column:   col,
				Severity: gossa.SeverityFatal.String(),
				Code:     e.Kind.String(),
				Message:  e.Message,
			})
		}
	}
	return out
}

func buildRecordJSON(r *gossa.Record, line int, opts dumpOptions) RecordJSON {
	src := r.Source()
	rj := RecordJSON{Line: line}
	switch {
	case r.Raw:
		rj.Raw = r.Line()
	case r.Data:
		rj.Fields = []FieldJSON{{Value: r.Fields[0].Text(src)}}
	case r.Schema() != nil:
		rj.Keyword = r.KeywordText()
		schema := r.Schema()
		for i, f := range r.Fields {
			rj.Fields = append(rj.Fields, FieldJSON{Name: schema.Name(i), Value: f.Text(src)})
		}
		if opts.IncludeText && schema.Kind() == script.KindEvents {
			rj.Text = r.PlainText()
		}
	default:
		key, value := r.Entry()
		rj.Keyword = key
		rj.Fields = []FieldJSON{{Value: value}}
	}
	return rj
}
