package script

import "fmt"

// Attachment is a file embedded in a [Fonts] or [Graphics] section.
type Attachment struct {
	Name  string
	Kind  Kind
	Span  Span
	lines []Span
	src   []byte
}

// Lines returns the spans of the encoded payload lines.
func (a Attachment) Lines() []Span { return a.lines }

// Decode returns the attachment's file content.
func (a Attachment) Decode() ([]byte, error) {
	var enc []byte
	for _, l := range a.lines {
		enc = append(enc, l.Bytes(a.src)...)
	}
	data, err := Uudecode(enc)
	if err != nil {
		return nil, fmt.Errorf("attachment %q: %w", a.Name, err)
	}
	return data, nil
}

// Attachments returns every embedded file in source order.
func (d *Document) Attachments() []Attachment {
	var out []Attachment
	for _, s := range d.sections {
		if !s.kind.IsAttachment() {
			continue
		}
		cur := -1
		for _, r := range s.records {
			switch {
			case r.Raw:
				continue
			case r.Data:
				if cur >= 0 {
					out[cur].lines = append(out[cur].lines, r.Fields[0])
					out[cur].Span = out[cur].Span.Cover(r.Span)
				}
			default:
				_, name := r.Entry()
				out = append(out, Attachment{Name: name, Kind: s.kind, Span: r.Span, src: d.src})
				cur = len(out) - 1
			}
		}
	}
	return out
}

// Uudecode decodes the attachment encoding: every character carries six
// bits as its value minus 33, four characters per three bytes, with a
// short final group of two or three characters. Whitespace is skipped.
func Uudecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*3/4)
	var group [4]byte
	n := 0
	for i, c := range data {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if c < 33 || c > 96 {
			return nil, fmt.Errorf("%w: byte %q at %d is outside the attachment alphabet", ErrInvalidValue, c, i)
		}
		group[n] = c - 33
		n++
		if n == 4 {
			out = append(out,
				group[0]<<2|group[1]>>4,
				group[1]<<4|group[2]>>2,
				group[2]<<6|group[3])
			n = 0
		}
	}
	switch n {
	case 1:
		return nil, fmt.Errorf("%w: truncated attachment data", ErrInvalidValue)
	case 2:
		out = append(out, group[0]<<2|group[1]>>4)
	case 3:
		out = append(out, group[0]<<2|group[1]>>4, group[1]<<4|group[2]>>2)
	}
	return out, nil
}

// Uuencode encodes data into attachment lines of at most 80 characters.
func Uuencode(data []byte) []string {
	var enc []byte
	for i := 0; i < len(data); i += 3 {
		var b [3]byte
		n := copy(b[:], data[i:])
		chars := [4]byte{
			b[0] >> 2,
			(b[0]&0x3)<<4 | b[1]>>4,
			(b[1]&0xF)<<2 | b[2]>>6,
			b[2] & 0x3F,
		}
		for _, c := range chars[:n+1] {
			enc = append(enc, c+33)
		}
	}
	var lines []string
	for len(enc) > 80 {
		lines = append(lines, string(enc[:80]))
		enc = enc[80:]
	}
	if len(enc) > 0 {
		lines = append(lines, string(enc))
	}
	return lines
}
