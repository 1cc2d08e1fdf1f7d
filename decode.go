package gossa

import (
	"bytes"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/gossa/gossa/internal/types"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decode returns src as UTF-8. UTF-8 input (with or without a BOM) is
// returned unchanged. UTF-16 with a BOM is transcoded and given a UTF-8
// BOM so the document remembers it had one. Other input is transcoded from
// charset when one is named; otherwise it is an encoding error.
func decode(src []byte, charset string, logger *slog.Logger) ([]byte, error) {
	log := types.Logger{L: logger}
	switch {
	case bytes.HasPrefix(src, bomUTF16LE), bytes.HasPrefix(src, bomUTF16BE):
		out, err := transcode(src, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM))
		if err != nil {
			return nil, encodingError(0, fmt.Sprintf("invalid UTF-16: %v", err))
		}
		log.Log(slog.LevelDebug, "transcoded UTF-16 input", slog.Int("bytes", len(src)))
		return append(bytes.Clone(bomUTF8), out...), nil
	case utf8.Valid(src):
		return src, nil
	}

	if charset == "" {
		return nil, encodingError(firstInvalid(src), "input is not valid UTF-8 and no charset was given")
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, encodingError(0, fmt.Sprintf("unknown charset %q", charset))
	}
	out, err := transcode(src, enc)
	if err != nil {
		return nil, encodingError(0, fmt.Sprintf("cannot decode as %s: %v", charset, err))
	}
	log.Log(slog.LevelDebug, "transcoded legacy input",
		slog.String("charset", charset),
		slog.Int("bytes", len(src)))
	return out, nil
}

func transcode(src []byte, enc encoding.Encoding) ([]byte, error) {
	// ExpectBOM honours a big-endian BOM as well.
	return enc.NewDecoder().Bytes(src)
}

func firstInvalid(src []byte) int {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(src)
}

func encodingError(at int, msg string) *ParseError {
	return &ParseError{
		Kind:    types.ErrKindEncoding,
		Span:    types.SpanOf(at, at),
		Message: msg,
	}
}
