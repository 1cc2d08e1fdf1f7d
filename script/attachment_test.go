package script

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gossa/gossa/internal/testutil"
)

func TestUuencodeRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0xFF, 0xFE},
		[]byte("abc"),
		[]byte("hello, attachment"),
		bytes.Repeat([]byte{0x00, 0x7F, 0x80, 0xFF}, 100),
	}
	for _, in := range inputs {
		lines := Uuencode(in)
		for _, l := range lines {
			testutil.True(t, len(l) <= 80, "line length %d", len(l))
		}
		var enc []byte
		for _, l := range lines {
			enc = append(enc, l...)
			enc = append(enc, '\n')
		}
		out, err := Uudecode(enc)
		testutil.NoError(t, err)
		testutil.True(t, bytes.Equal(in, out), "round trip of %d bytes", len(in))
	}
}

func TestUuencodeAlphabet(t *testing.T) {
	// Three zero bytes encode to four '!' characters.
	testutil.SliceEqual(t, []string{"!!!!"}, Uuencode([]byte{0, 0, 0}), "zeros")
	// A one byte tail encodes to two characters.
	testutil.SliceEqual(t, []string{"!!"}, Uuencode([]byte{0}), "tail")
}

func TestUudecodeErrors(t *testing.T) {
	for _, in := range []string{"!", "!!!!!", "ab~c"} {
		_, err := Uudecode([]byte(in))
		testutil.True(t, errors.Is(err, ErrInvalidValue), "Uudecode(%q) should fail, got %v", in, err)
	}
}
