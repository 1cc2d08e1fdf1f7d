// Package integration provides integration tests against the script test
// corpus.
//
// These tests parse every file in testdata/scripts/ and make assertions
// against the resulting documents. Each script exercises one family of
// behavior so a regression points at a single file.
//
// # File Organization
//
//   - corpus_test.go: Shared infrastructure, batch parse and round trip
//   - hello_test.go: A well-formed ASS script, typed access and markup
//   - legacy_test.go: SSA v4 scripts and legacy numbering
//   - aegisub_test.go: Editor sections, attachments and extension processing
//   - broken_test.go: Recovery from malformed input
package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gossa/gossa"
	"github.com/gossa/gossa/ext/aegisub"
)

// corpusResults holds the shared parse results for all tests, keyed by
// base file name. Parsed once via loadCorpus().
var (
	corpusResults map[string]gossa.FileResult
	corpusOnce    sync.Once
	corpusErr     error
)

// corpusPath returns the path to the test corpus.
func corpusPath() string {
	return filepath.Join("..", "testdata", "scripts")
}

// registry returns a registry with the editor processors bound.
func registry(t testing.TB) *gossa.Registry {
	t.Helper()
	reg := gossa.NewRegistry()
	require.NoError(t, aegisub.Register(reg))
	return reg
}

// loadCorpus parses the entire corpus once with issues enabled and
// extension processing on.
func loadCorpus(t *testing.T) map[string]gossa.FileResult {
	t.Helper()

	corpusOnce.Do(func() {
		src, err := gossa.DirTree(corpusPath())
		if err != nil {
			corpusErr = err
			return
		}
		results, err := gossa.ParseAll(context.Background(), src,
			gossa.WithRegistry(registry(t)),
			gossa.WithProcessExtensions())
		if err != nil {
			corpusErr = err
			return
		}
		corpusResults = make(map[string]gossa.FileResult, len(results))
		for _, fr := range results {
			corpusResults[filepath.Base(fr.Path)] = fr
		}
	})

	require.NoError(t, corpusErr, "corpus should parse")
	return corpusResults
}

// parsed returns the parse result of one corpus file.
func parsed(t *testing.T, name string) *gossa.Result {
	t.Helper()
	fr, ok := loadCorpus(t)[name]
	require.True(t, ok, "corpus file %s missing", name)
	require.NoError(t, fr.Err, "%s should decode", name)
	return fr.Result
}

// codes counts issues by code.
func codes(issues []gossa.Issue) map[string]int {
	out := make(map[string]int)
	for _, is := range issues {
		out[is.Code]++
	}
	return out
}

func TestCorpusLoads(t *testing.T) {
	results := loadCorpus(t)
	assert.Len(t, results, 5)
	for name, fr := range results {
		assert.NoError(t, fr.Err, name)
		assert.NotNil(t, fr.Result, name)
	}
}

func TestCorpusRoundTrip(t *testing.T) {
	for name, fr := range loadCorpus(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, fr.Err)
			want, err := os.ReadFile(fr.Path)
			require.NoError(t, err)

			got := fr.Result.Document.Bytes()
			assert.True(t, bytes.Equal(want, got), "serialized %s differs from source", name)

			// A second pass is stable.
			again, err := gossa.ParseWithIssues(got, gossa.WithRegistry(registry(t)))
			require.NoError(t, err)
			assert.Equal(t, got, again.Document.Bytes())
		})
	}
}

func TestCorpusIssuesOrdered(t *testing.T) {
	for name, fr := range loadCorpus(t) {
		issues := fr.Result.Issues
		for i := 1; i < len(issues); i++ {
			assert.LessOrEqual(t, issues[i-1].Span.Start, issues[i].Span.Start,
				"%s: issue %d out of order", name, i)
		}
	}
}

func TestCRLFAndBOM(t *testing.T) {
	res := parsed(t, "crlf-bom.ass")
	doc := res.Document
	assert.True(t, doc.HasBOM())
	assert.Equal(t, "crlf", doc.LineEnding().String())
	assert.Empty(t, res.Errors)

	var texts []string
	for d := range doc.Dialogues() {
		text, err := d.String("Text")
		require.NoError(t, err)
		texts = append(texts, text)
	}
	assert.Equal(t, []string{"Windows line, with comma"}, texts)
}
