package integration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gossa/gossa"
	"github.com/gossa/gossa/script"
)

func TestBrokenErrors(t *testing.T) {
	res := parsed(t, "broken.ass")
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "keyword-not-allowed", res.Errors[0].Kind.String())
	assert.Equal(t, "empty-format", res.Errors[1].Kind.String())

	err := res.Err()
	require.Error(t, err)
	var pe *gossa.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.False(t, errors.Is(err, gossa.ErrEncoding))
}

func TestBrokenIssues(t *testing.T) {
	got := codes(parsed(t, "broken.ass").Issues)

	for _, code := range []string{
		"malformed-line",
		"script-type-unknown",
		"value-invalid",
		"format-unknown-field",
		"event-negative-duration",
		"style-undefined",
		"tag-unknown",
		"section-duplicate",
		"format-missing-default-used",
		"extension-unregistered",
	} {
		assert.Positive(t, got[code], "want at least one %s, got %v", code, got)
	}
	// Three from the short line in the first [Events], five from the
	// default-schema line in the second.
	assert.Equal(t, 3+5, got["field-missing"])
}

func TestBrokenSuggestion(t *testing.T) {
	res := parsed(t, "broken.ass")
	for _, is := range res.Issues {
		if is.Code == "style-undefined" {
			assert.Equal(t, `did you mean "Default"?`, is.Suggestion)
			return
		}
	}
	t.Fatal("no style-undefined issue")
}

func TestBrokenRecovery(t *testing.T) {
	doc := parsed(t, "broken.ass").Document

	require.Len(t, doc.Preamble(), 1)
	assert.Equal(t, "stray line before any section", doc.Preamble()[0].Text(doc.Source()))

	var events []*gossa.Section
	for _, s := range doc.Sections() {
		if s.Kind() == script.KindEvents {
			events = append(events, s)
		}
	}
	require.Len(t, events, 2, "duplicate sections are kept")
	assert.False(t, events[1].Declared(), "second [Events] uses the default schema")
	assert.Same(t, events[0], doc.Events(), "lookups use the first occurrence")

	raw := 0
	for _, r := range events[0].Records() {
		if r.Raw {
			raw++
			assert.Equal(t, "Style: Nope,Arial,20", r.Line())
		}
	}
	assert.Equal(t, 1, raw)

	// Every record after the empty Format line is kept raw.
	last := doc.Sections()[len(doc.Sections())-1]
	assert.Equal(t, "V4 Styles", last.Name())
	for _, r := range last.Records() {
		assert.True(t, r.Raw, "%q should be raw", r.Line())
	}
}

func TestBrokenShortfallPadding(t *testing.T) {
	doc := parsed(t, "broken.ass").Document
	var short *gossa.Record
	for d := range doc.Dialogues() {
		if d.Line() == "Dialogue: 0,0:00:01.00" {
			short = d
		}
	}
	require.NotNil(t, short)
	require.Len(t, short.Fields, 5, "padded to the schema")
	for _, f := range short.Fields[2:] {
		assert.True(t, f.IsEmpty())
		assert.Equal(t, short.Span.End, f.Start, "padding sits at the line end")
	}
	_, err := short.Time("End")
	assert.Error(t, err, "empty field does not parse as a time")
}

func TestBrokenWarningsOnly(t *testing.T) {
	fr := loadCorpus(t)["broken.ass"]
	res, err := gossa.ParseWithIssues(fr.Result.Document.Bytes(), gossa.WithDiagnosticConfig(gossa.WarningsOnly()))
	require.NoError(t, err)
	for _, is := range res.Issues {
		assert.Equal(t, gossa.SeverityWarning, is.Severity, "%s", is)
	}
	assert.Len(t, res.Errors, 2, "errors are never filtered")
}
