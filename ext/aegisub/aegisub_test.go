package aegisub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gossa/gossa"
	"github.com/gossa/gossa/ext/aegisub"
	"github.com/gossa/gossa/script"
)

const project = "[Script Info]\nScriptType: v4.00+\n\n" +
	"[Aegisub Project Garbage]\n" +
	"Audio File: ep01.mkv\n" +
	"Video File: ep01.mkv\n" +
	"Video Zoom Percent: 0.75\n" +
	"Active Line: 12\n" +
	"Scroll Position: lots\n" +
	"Automation Scripts: a.lua|b.moon\n" +
	"Custom Key: kept\n\n" +
	"[Aegisub Extradata]\n" +
	"Data: 1,_aegi_perspective,e0.5#2C1.0\n" +
	"Data: 2,blob,u" + "@@" + "\n"

func registry(t *testing.T) *script.Registry {
	t.Helper()
	reg := gossa.NewRegistry()
	require.NoError(t, aegisub.Register(reg))
	return reg
}

func TestRegisterTwice(t *testing.T) {
	reg := registry(t)
	assert.ErrorIs(t, aegisub.Register(reg), script.ErrAlreadyRegistered)
}

func TestProjectGarbage(t *testing.T) {
	res, err := gossa.ParseWithIssues([]byte(project), gossa.WithRegistry(registry(t)), gossa.WithProcessExtensions())
	require.NoError(t, err)

	invalid := 0
	for _, is := range res.Issues {
		if is.Code == "extension-invalid" {
			invalid++
			assert.Contains(t, is.Message, "Scroll Position")
		}
	}
	assert.Equal(t, 1, invalid)

	data, ok := res.Document.Section(aegisub.ProjectGarbageSection).Data()
	require.True(t, ok)
	p, ok := data.(*aegisub.Project)
	require.True(t, ok, "got %T", data)
	assert.Equal(t, "ep01.mkv", p.AudioFile)
	assert.Equal(t, 0.75, p.VideoZoomPercent)
	assert.Equal(t, 12, p.ActiveLine)
	assert.Equal(t, 0, p.ScrollPosition, "invalid value left zero")
	assert.Equal(t, []string{"a.lua", "b.moon"}, p.AutomationScripts)
	assert.Equal(t, map[string]string{"Custom Key": "kept"}, p.Other)
}

func TestExtradata(t *testing.T) {
	res, err := gossa.ParseWithIssues([]byte(project), gossa.WithRegistry(registry(t)), gossa.WithProcessExtensions())
	require.NoError(t, err)

	data, ok := res.Document.Section(aegisub.ExtradataSection).Data()
	require.True(t, ok)
	entries, ok := data.([]aegisub.Entry)
	require.True(t, ok, "got %T", data)
	require.Len(t, entries, 2)
	assert.Equal(t, aegisub.Entry{ID: 1, Key: "_aegi_perspective", Value: []byte("0.5,1.0")}, entries[0])
	assert.Equal(t, 2, entries[1].ID)
	assert.Equal(t, []byte{0x7D}, entries[1].Value)
}

func TestExtradataInvalid(t *testing.T) {
	src := "[Aegisub Extradata]\n" +
		"Data: x,key,evalue\n" +
		"Data: 3,key,zvalue\n" +
		"Data: 4,only-two\n" +
		"Other: 1,a,eb\n" +
		"not a record\n"
	res, err := gossa.ParseWithIssues([]byte(src), gossa.WithRegistry(registry(t)), gossa.WithProcessExtensions())
	require.NoError(t, err)

	codes := map[string]int{}
	for _, is := range res.Issues {
		codes[is.Code]++
	}
	assert.Equal(t, 5, codes["extension-invalid"])
	assert.Equal(t, 1, codes["extension-process-failed"])

	_, stored := res.Document.Section(aegisub.ExtradataSection).Data()
	assert.False(t, stored)
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "eplain"},
		{"a,b", "ea#2Cb"},
		{"x:y|z#", "ex#3Ay#7Cz#23"},
		{"line\nbreak", "eline#0Abreak"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, aegisub.Escape(tc.in), "Escape(%q)", tc.in)
	}
}
