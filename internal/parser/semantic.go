package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/types"
	"github.com/gossa/gossa/script"
)

// semantic interprets every typed field and cross-references event styles.
// Empty fields are skipped; a field missing from its record has already
// been reported.
func (p *Parser) semantic(doc *script.Document) {
	if info := doc.ScriptInfo(); info != nil {
		p.checkScriptInfo(info)
	} else if len(doc.Sections()) > 0 && !p.cfg.Partial {
		p.emit(types.CategoryStructural, types.SeverityInfo, types.DiagScriptInfoMissing, doc.Sections()[0].HeaderSpan(),
			"document has no [Script Info] section", "add a [Script Info] section with ScriptType: v4.00+")
	}

	styles := styleNames(append([]*script.Document{doc}, p.cfg.Context...))
	for _, sec := range doc.Sections() {
		if !sec.Kind().IsTabular() {
			continue
		}
		for _, r := range sec.Records() {
			if r.Raw {
				continue
			}
			p.checkFields(r)
			if sec.Kind() == builtins.KindEvents {
				p.checkEvent(r, styles)
			}
		}
	}
}

func (p *Parser) checkScriptInfo(info *script.Section) {
	for _, r := range info.Records() {
		if r.Raw {
			continue
		}
		key, value := r.Entry()
		span := r.Fields[0]
		if strings.EqualFold(key, "ScriptType") {
			if !slices.ContainsFunc(builtins.KnownScriptTypes, func(t string) bool {
				return strings.EqualFold(t, value)
			}) {
				p.emit(types.CategorySemantic, types.SeverityInfo, types.DiagScriptTypeUnknown, span,
					fmt.Sprintf("unknown ScriptType %q", value),
					"use v4.00+ for ASS or v4.00 for SSA")
			}
			continue
		}
		t, ok := builtins.LookupFieldType(builtins.KindScriptInfo, key)
		if !ok || value == "" {
			continue
		}
		var err error
		switch t {
		case builtins.FieldInt:
			_, err = script.ParseInt(value)
		case builtins.FieldFloat:
			_, err = script.ParseFloat(value)
		case builtins.FieldBool:
			_, err = script.ParseBool(value)
		}
		if err != nil {
			fe := &script.FieldError{Field: key, Type: t, Span: span, Value: value, Err: err}
			p.report(fe.Issue())
		}
	}
}

func (p *Parser) checkFields(r *script.Record) {
	schema := r.Schema()
	for i := range schema.Len() {
		switch schema.FieldType(i) {
		case builtins.FieldString, builtins.FieldText:
			continue
		}
		if span, ok := r.FieldAt(i); !ok || span.IsEmpty() {
			continue
		}
		if _, err := r.Value(schema.Name(i)); err != nil {
			if fe, ok := err.(*script.FieldError); ok {
				p.report(fe.Issue())
			}
		}
	}
}

func (p *Parser) checkEvent(r *script.Record, styles styleSet) {
	start, errStart := r.Time("Start")
	end, errEnd := r.Time("End")
	if errStart == nil && errEnd == nil && end < start {
		p.emit(types.CategorySemantic, types.SeverityWarning, types.DiagEventNegativeDuration, r.Span,
			fmt.Sprintf("event ends at %s before it starts at %s", script.FormatTime(end), script.FormatTime(start)), "")
	}

	style, err := r.StyleRef("Style")
	if err != nil || style == "" {
		return
	}
	if styles.exact[style] {
		return
	}
	span, _ := r.Field("Style")
	suggestion := ""
	if match, ok := styles.folded[strings.ToLower(style)]; ok {
		suggestion = fmt.Sprintf("did you mean %q?", match)
	}
	p.emit(types.CategorySemantic, types.SeverityInfo, types.DiagStyleUndefined, span,
		fmt.Sprintf("style %q is not defined", style), suggestion)
}

// styleSet holds the defined style names, and each lowercase form mapped
// to the first name that folds to it.
type styleSet struct {
	exact  map[string]bool
	folded map[string]string
}

func styleNames(docs []*script.Document) styleSet {
	set := styleSet{exact: make(map[string]bool), folded: make(map[string]string)}
	for _, doc := range docs {
		for _, sec := range doc.Sections() {
			if !sec.Kind().IsStyles() {
				continue
			}
			for r := range sec.Find(builtins.KeywordStyle) {
				n, err := r.String("Name")
				if err != nil {
					continue
				}
				set.exact[n] = true
				if _, ok := set.folded[strings.ToLower(n)]; !ok {
					set.folded[strings.ToLower(n)] = n
				}
			}
		}
	}
	return set
}

// markup parses the override tags of every event's text field.
func (p *Parser) markup(doc *script.Document) {
	ev := doc.Events()
	if ev == nil {
		return
	}
	for _, r := range ev.Records() {
		if r.Raw {
			continue
		}
		_, issues := r.Segments()
		for _, issue := range issues {
			p.report(issue)
		}
	}
}
