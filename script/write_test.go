package script

import (
	"bytes"
	"testing"

	"github.com/gossa/gossa/internal/testutil"
	"github.com/gossa/gossa/internal/types"
)

func TestWriteTo(t *testing.T) {
	src := []byte("\xEF\xBB\xBF[Events]\r\n; note\r\nDialogue:  0:00:00.00 ,x, y\r\n")
	b := NewBuilder(src)
	b.SetBOM(true)
	sec, _ := b.OpenSection("Events", types.SpanOf(3, 11), types.SpanOf(4, 10), KindEvents)
	schema := DeclaredSchema(KindEvents, []string{"Start", "Text"}, Span{})
	b.SetSchema(sec, schema)
	b.AddComment(sec, types.SpanOf(13, 19))
	b.AddRecord(sec, Record{
		Keyword: types.SpanOf(21, 29),
		Fields:  []Span{types.SpanOf(32, 42), types.SpanOf(44, 48)},
		Span:    types.SpanOf(21, 48),
	}, schema)

	var buf bytes.Buffer
	n, err := b.Document().WriteTo(&buf)
	testutil.NoError(t, err)
	testutil.Equal(t, int64(buf.Len()), n, "bytes written")

	want := "\xEF\xBB\xBF[Events]\r\n" +
		"Format: Start, Text\r\n" +
		"; note\r\n" +
		"Dialogue: 0:00:00.00,x, y\r\n"
	testutil.Equal(t, want, buf.String(), "output")
}
