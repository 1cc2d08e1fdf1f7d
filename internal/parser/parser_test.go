package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/gossa/gossa/internal/builtins"
	"github.com/gossa/gossa/internal/lexer"
	"github.com/gossa/gossa/internal/testutil"
	"github.com/gossa/gossa/internal/types"
	"github.com/gossa/gossa/script"
)

const helloWorld = "[Script Info]\n" +
	"ScriptType: v4.00+\n" +
	"PlayResX: 640\n" +
	"\n" +
	"[V4+ Styles]\n" +
	"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n" +
	"Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n" +
	"\n" +
	"[Events]\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n" +
	"Dialogue: 0,0:00:01.00,0:00:03.50,Default,,0,0,0,,{\\b1}Hello{\\b0}, world\n"

func parse(t *testing.T, src string, cfg Config) (*script.Document, []types.Issue, []*types.ParseError) {
	t.Helper()
	return New([]byte(src), nil, cfg).Parse()
}

func checks() Config {
	return Config{SemanticChecks: true, MarkupChecks: true}
}

func TestParseHelloWorld(t *testing.T) {
	doc, issues, errs := parse(t, helloWorld, checks())
	testutil.Len(t, errs, 0, "errors")
	testutil.NoIssues(t, issues)
	testutil.Len(t, doc.Sections(), 3, "sections")

	v, ok := doc.Info("ScriptType")
	testutil.True(t, ok, "ScriptType present")
	testutil.Equal(t, "v4.00+", v, "ScriptType")

	var dialogues []*script.Record
	for r := range doc.Dialogues() {
		dialogues = append(dialogues, r)
	}
	testutil.Len(t, dialogues, 1, "dialogues")
	text, err := dialogues[0].String("Text")
	testutil.NoError(t, err)
	testutil.Equal(t, "{\\b1}Hello{\\b0}, world", text, "text keeps its comma")
	testutil.Equal(t, "Hello, world", dialogues[0].PlainText(), "plain text")

	style := doc.Style("Default")
	testutil.NotNil(t, style, "Default style")
	align, err := style.Alignment("Alignment")
	testutil.NoError(t, err)
	testutil.Equal(t, script.Alignment(2), align, "alignment")
}

func TestParseFieldShortfall(t *testing.T) {
	src := "[V4+ Styles]\n" +
		"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n" +
		"Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10\n"
	doc, issues, errs := parse(t, src, checks())
	testutil.Len(t, errs, 0, "errors")
	testutil.HasIssue(t, issues, types.DiagFieldMissing, 2)

	warnings := 0
	for _, is := range issues {
		if is.Severity == types.SeverityWarning {
			warnings++
		}
	}
	testutil.Equal(t, 2, warnings, "warnings: %s", testutil.DumpIssues(issues))

	r := doc.Style("Default")
	testutil.NotNil(t, r, "style")
	testutil.Len(t, r.Fields, 23, "fields padded to schema")
	for _, name := range []string{"MarginV", "Encoding"} {
		v, err := r.String(name)
		testutil.NoError(t, err)
		testutil.Equal(t, "", v, "%s defaults to empty", name)
	}
}

func TestParseFieldOverflow(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		overflow int
	}{
		{
			name: "text field absorbs commas silently",
			src: "[Events]\nFormat: Start, End, Text\n" +
				"Dialogue: 0:00:00.00,0:00:01.00,a, b, c\n",
			overflow: 0,
		},
		{
			name: "single extra delimiter in non-text field",
			src: "[Events]\nFormat: Start, End, Style\n" +
				"Dialogue: 0:00:00.00,0:00:01.00,a,b\n",
			overflow: 0,
		},
		{
			name: "several extra delimiters in non-text field",
			src: "[Events]\nFormat: Start, End, Style\n" +
				"Dialogue: 0:00:00.00,0:00:01.00,a,b,c\n",
			overflow: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, issues, _ := parse(t, tc.src, Config{})
			testutil.HasIssue(t, issues, types.DiagFieldOverflow, tc.overflow)
		})
	}
}

func TestParseMissingFormatUsesDefault(t *testing.T) {
	src := "[Events]\n" +
		"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hi, there\n"
	doc, issues, _ := parse(t, src, Config{})
	testutil.HasIssue(t, issues, types.DiagFormatMissing, 1)

	ev := doc.Events()
	testutil.NotNil(t, ev, "events")
	testutil.False(t, ev.Declared(), "schema is not declared")
	testutil.Equal(t, len(builtins.DefaultSchema(builtins.KindEvents)), ev.Schema().Len(), "default schema")

	r := ev.Records()[0]
	text, err := r.String("Text")
	testutil.NoError(t, err)
	testutil.Equal(t, "Hi, there", text, "text")
}

func TestParseFormatChecks(t *testing.T) {
	src := "[Events]\n" +
		"Format: Start, End, Text, start, Wibble\n" +
		"Dialogue: 0:00:00.00,0:00:01.00,x,0:00:00.00,y\n" +
		"Format: Start, End, Style, Text\n" +
		"Dialogue: 0:00:00.00,0:00:01.00,Default,hello\n"
	doc, issues, _ := parse(t, src, Config{})
	testutil.HasIssue(t, issues, types.DiagFormatDuplicate, 1)
	testutil.HasIssue(t, issues, types.DiagFormatUnknownField, 1)
	testutil.HasIssue(t, issues, types.DiagFormatRedeclared, 1)
	testutil.HasIssue(t, issues, types.DiagFormatMissingField, 1) // Style, in the first Format

	recs := doc.Events().Records()
	testutil.Len(t, recs, 2, "records")
	testutil.Equal(t, 5, recs[0].Schema().Len(), "first schema")
	testutil.Equal(t, 4, recs[1].Schema().Len(), "redeclared schema")
	style, err := recs[1].String("Style")
	testutil.NoError(t, err)
	testutil.Equal(t, "Default", style, "field from the redeclared schema")
}

func TestParseFormatAfterDefaultSchema(t *testing.T) {
	src := "[Events]\n" +
		"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,stray\n" +
		"Format: Start, End, Style, Text\n" +
		"Dialogue: 0:00:00.00,0:00:01.00,Default,hello\n"
	doc, issues, _ := parse(t, src, Config{})
	testutil.HasIssue(t, issues, types.DiagFormatMissing, 1)
	testutil.HasIssue(t, issues, types.DiagFormatRedeclared, 0)
	testutil.True(t, doc.Events().Declared(), "Format line takes over")
}

func TestParseEmptyFormat(t *testing.T) {
	src := "[Events]\n" +
		"Format:\n" +
		"Dialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,x\n" +
		"[Script Info]\n" +
		"Title: ok\n"
	doc, _, errs := parse(t, src, Config{})
	testutil.Len(t, errs, 1, "errors")
	testutil.Equal(t, types.ErrKindEmptyFormat, errs[0].Kind, "kind")

	recs := doc.Events().Records()
	testutil.Len(t, recs, 2, "records kept")
	for _, r := range recs {
		testutil.True(t, r.Raw, "record %q kept raw", r.Line())
	}
	title, ok := doc.Info("Title")
	testutil.True(t, ok, "parsing resumes at the next header")
	testutil.Equal(t, "ok", title, "title")
}

func TestParseRecordOutsideSection(t *testing.T) {
	src := "; leading comment\n" +
		"Dialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,x\n" +
		"[Script Info]\n" +
		"Title: t\n"
	doc, _, errs := parse(t, src, Config{})
	testutil.Len(t, errs, 1, "errors")
	testutil.Equal(t, types.ErrKindRecordOutsideSection, errs[0].Kind, "kind")
	testutil.Len(t, doc.Preamble(), 2, "preamble lines")
	testutil.Len(t, doc.Sections(), 1, "sections")
}

func TestParseKeywordNotAllowed(t *testing.T) {
	src := "[Events]\n" +
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n" +
		"Style: Default,Arial,20\n" +
		"Dialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,x\n"
	doc, _, errs := parse(t, src, Config{})
	testutil.Len(t, errs, 1, "errors")
	testutil.Equal(t, types.ErrKindKeywordNotAllowed, errs[0].Kind, "kind")

	recs := doc.Events().Records()
	testutil.Len(t, recs, 2, "records")
	testutil.True(t, recs[0].Raw, "misplaced record kept raw")
	testutil.False(t, recs[1].Raw, "next record parsed normally")
}

func TestParseDuplicateSection(t *testing.T) {
	src := "[Script Info]\nTitle: first\n\n" +
		"[Events]\nFormat: Start, End, Text\n\n" +
		"[Script Info]\nTitle: second\n"
	doc, issues, _ := parse(t, src, Config{})
	testutil.HasIssue(t, issues, types.DiagSectionDuplicate, 1)
	testutil.Len(t, doc.Sections(), 2, "sections")
	testutil.Equal(t, builtins.KindScriptInfo, doc.Sections()[0].Kind(), "replacement keeps the first position")

	title, _ := doc.Info("Title")
	testutil.Equal(t, "second", title, "later section wins")
}

func TestParseScriptInfoDuplicateKey(t *testing.T) {
	src := "[Script Info]\nTitle: a\ntitle: b\n"
	doc, issues, _ := parse(t, src, Config{})
	testutil.HasIssue(t, issues, types.DiagScriptInfoDuplicate, 1)
	title, _ := doc.Info("Title")
	testutil.Equal(t, "b", title, "last value wins")
}

type countingProcessor struct {
	validated int
	processed int
	issues    []types.Issue
	err       error
}

func (c *countingProcessor) Validate(s script.RawSection) []script.Issue {
	c.validated++
	return c.issues
}

func (c *countingProcessor) Process(s script.RawSection) (any, error) {
	c.processed++
	if c.err != nil {
		return nil, c.err
	}
	return len(s.Records), nil
}

func TestParseExtensions(t *testing.T) {
	src := "[Script Info]\nTitle: t\n\n" +
		"[Custom Data]\nkey: value\nother: thing\n\n" +
		"[Unknown Thing]\nwhatever\n"

	t.Run("unregistered", func(t *testing.T) {
		doc, issues, _ := parse(t, src, Config{})
		testutil.HasIssue(t, issues, types.DiagExtensionUnregistered, 2)
		sec := doc.Section("Custom Data")
		testutil.NotNil(t, sec, "extension section kept")
		testutil.True(t, sec.Handle().IsZero(), "no handle")
		_, err := sec.Process()
		testutil.True(t, errors.Is(err, script.ErrNoProcessor), "ErrNoProcessor, got %v", err)
	})

	t.Run("registered validates but does not process", func(t *testing.T) {
		proc := &countingProcessor{issues: []types.Issue{{
			Severity: types.SeverityFatal,
			Category: types.CategorySemantic,
			Message:  "bad key",
		}}}
		reg := script.NewRegistry()
		reg.MustRegister("custom*", proc)

		doc, issues, _ := parse(t, src, Config{Registry: reg})
		testutil.Equal(t, 1, proc.validated, "validated")
		testutil.Equal(t, 0, proc.processed, "processed")
		testutil.HasIssue(t, issues, types.DiagExtensionUnregistered, 1)
		testutil.HasIssue(t, issues, types.DiagExtensionInvalid, 1)
		for _, is := range issues {
			if is.Code == types.DiagExtensionInvalid {
				testutil.Equal(t, types.CategoryExtension, is.Category, "category forced")
				testutil.Equal(t, types.SeverityWarning, is.Severity, "severity capped")
			}
		}

		sec := doc.Section("custom data")
		testutil.Equal(t, "custom*", sec.Handle().Pattern(), "handle")
		_, stored := sec.Data()
		testutil.False(t, stored, "no stored data")
		v, err := sec.Process()
		testutil.NoError(t, err)
		testutil.Equal[any](t, 2, v, "on-demand result")
	})

	t.Run("processed at parse time", func(t *testing.T) {
		proc := &countingProcessor{}
		reg := script.NewRegistry()
		reg.MustRegister("Custom Data", proc)

		doc, _, _ := parse(t, src, Config{Registry: reg, ProcessExtensions: true})
		testutil.Equal(t, 1, proc.processed, "processed")
		data, stored := doc.Section("Custom Data").Data()
		testutil.True(t, stored, "stored")
		testutil.Equal[any](t, 2, data, "data")
	})

	t.Run("process failure", func(t *testing.T) {
		proc := &countingProcessor{err: errors.New("boom")}
		reg := script.NewRegistry()
		reg.MustRegister("Custom Data", proc)

		_, issues, errs := parse(t, src, Config{Registry: reg, ProcessExtensions: true})
		testutil.Len(t, errs, 0, "errors")
		testutil.HasIssue(t, issues, types.DiagExtensionFailed, 1)
	})
}

func TestParseSemanticChecks(t *testing.T) {
	src := "[Script Info]\nScriptType: v9\nPlayResX: wide\n\n" +
		"[V4+ Styles]\nFormat: Name, Fontsize\nStyle: Default,big\n\n" +
		"[Events]\nFormat: Start, End, Style, Text\n" +
		"Dialogue: 0:00:05.00,0:00:01.00,default,x\n" +
		"Dialogue: 0:00:00.00,0:00:01.00,*Default,x\n" +
		"Dialogue: nope,0:00:01.00,Missing,x\n"

	_, issues, _ := parse(t, src, checks())
	testutil.HasIssue(t, issues, types.DiagScriptTypeUnknown, 1)
	testutil.HasIssue(t, issues, types.DiagEventNegativeDuration, 1)
	testutil.HasIssue(t, issues, types.DiagStyleUndefined, 2)
	// PlayResX, Fontsize, Start
	testutil.HasIssue(t, issues, types.DiagValueInvalid, 3)

	for _, is := range issues {
		if is.Code == types.DiagStyleUndefined && is.Suggestion != "" {
			testutil.Contains(t, is.Suggestion, `"Default"`, "suggestion")
		}
	}

	_, issues, _ = parse(t, src, Config{})
	testutil.HasIssue(t, issues, types.DiagValueInvalid, 0)
}

func TestParseScriptInfoMissing(t *testing.T) {
	src := "; note\n[Events]\nFormat: Start, End, Text\n"
	_, issues, _ := parse(t, src, checks())
	testutil.HasIssue(t, issues, types.DiagScriptInfoMissing, 1)
	for _, is := range issues {
		if is.Code == types.DiagScriptInfoMissing {
			testutil.Equal(t, "[Events]", is.Span.Text([]byte(src)), "anchored to the first header")
		}
	}

	_, issues, _ = parse(t, "", checks())
	testutil.NoIssues(t, issues)
}

func TestParsePartialSkipsDocumentChecks(t *testing.T) {
	styles := "[V4+ Styles]\nFormat: Name, Fontsize\nStyle: Main,20\n"
	events := "[Events]\nFormat: Start, End, Style, Text\n" +
		"Dialogue: 0:00:00.00,0:00:01.00,Main,hi\n" +
		"Dialogue: 0:00:00.00,0:00:01.00,Other,hi\n"
	ctx, _, _ := parse(t, styles, Config{})

	cfg := checks()
	cfg.Partial = true
	cfg.Context = []*script.Document{ctx}
	_, issues, _ := parse(t, events, cfg)
	testutil.HasIssue(t, issues, types.DiagScriptInfoMissing, 0)
	testutil.HasIssue(t, issues, types.DiagStyleUndefined, 1) // Other

	_, issues, _ = parse(t, events, checks())
	testutil.HasIssue(t, issues, types.DiagScriptInfoMissing, 1)
	testutil.HasIssue(t, issues, types.DiagStyleUndefined, 2)
}

func TestParseMarkupChecks(t *testing.T) {
	src := "[Events]\nFormat: Start, End, Text\n" +
		"Dialogue: 0:00:00.00,0:00:01.00,{\\b1 unterminated\n" +
		"Dialogue: 0:00:00.00,0:00:01.00,{\\zz1}x\n"
	_, issues, _ := parse(t, src, checks())
	testutil.HasIssue(t, issues, types.DiagBlockUnterminated, 1)
	testutil.HasIssue(t, issues, types.DiagTagArgInvalid, 0)
	testutil.HasIssue(t, issues, types.DiagTagUnknown, 1)

	_, issues, _ = parse(t, src, Config{})
	testutil.HasIssue(t, issues, types.DiagBlockUnterminated, 0)
}

func TestParseDiagnosticConfig(t *testing.T) {
	src := "[Script Info]\nTitle: a\nTitle: b\n\n[Events]\nDialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,x,y\n"

	cfg := types.WarningsOnly()
	_, issues, _ := parse(t, src, Config{Diagnostics: &cfg})
	testutil.HasIssue(t, issues, types.DiagScriptInfoDuplicate, 0)
	testutil.HasIssue(t, issues, types.DiagFormatMissing, 0)

	cfg = types.DefaultConfig()
	cfg.Ignore = []string{"format-*"}
	_, issues, _ = parse(t, src, Config{Diagnostics: &cfg})
	testutil.HasIssue(t, issues, types.DiagFormatMissing, 0)
	testutil.HasIssue(t, issues, types.DiagScriptInfoDuplicate, 1)
}

func TestParseAttachments(t *testing.T) {
	payload := []byte("font bytes!")
	lines := script.Uuencode(payload)
	src := "[Fonts]\nfontname: a.ttf\n"
	for _, l := range lines {
		src += l + "\n"
	}
	doc, issues, _ := parse(t, src, Config{})
	testutil.NoIssues(t, issues)

	atts := doc.Attachments()
	testutil.Len(t, atts, 1, "attachments")
	testutil.Equal(t, "a.ttf", atts[0].Name, "name")
	data, err := atts[0].Decode()
	testutil.NoError(t, err)
	testutil.Equal(t, string(payload), string(data), "decoded")
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"hello world": helloWorld,
		"crlf with comments": "\xEF\xBB\xBF[Script Info]\r\n; comment\r\nTitle: x\r\n\r\n" +
			"[Events]\r\nFormat: Start, End, Text\r\n" +
			"Dialogue: 0:00:00.00 , 0:00:01.00,{\\bogus}a, b\r\n" +
			"garbage line\r\n",
		"extension and raw": "preamble junk\n[Aegisub Project Garbage]\nVideo File: a.mkv\n" +
			"[Events]\nFormat:\nDialogue: x\n",
		"shortfall": "[Events]\nFormat: Start, End, Style, Text\nDialogue: 0:00:00.00,0:00:01.00\n",
	}
	for name, src := range inputs {
		t.Run(name, func(t *testing.T) {
			doc, _, _ := parse(t, src, Config{})
			once := doc.Bytes()
			again, _, _ := New(once, nil, Config{}).Parse()
			twice := again.Bytes()
			testutil.Equal(t, string(once), string(twice), "serialization is idempotent")
			testutil.Equal(t, doc.LineEnding(), again.LineEnding(), "line ending")
			testutil.Equal(t, doc.HasBOM(), again.HasBOM(), "bom")
		})
	}
}

func TestNewRange(t *testing.T) {
	src := []byte(helloWorld)
	var events types.Span
	for _, b := range lexer.SectionBounds(src) {
		if strings.HasPrefix(b.Text(src), "[Events]") {
			events = b
		}
	}
	doc, issues, errs := NewRange(src, events, nil, Config{}).Parse()
	testutil.Len(t, errs, 0, "errors")
	testutil.NoIssues(t, issues)
	testutil.Len(t, doc.Sections(), 1, "sections")
	testutil.Equal(t, builtins.KindEvents, doc.Sections()[0].Kind(), "kind")
	testutil.Equal(t, events.Start, doc.Sections()[0].HeaderSpan().Start, "absolute spans")
}
