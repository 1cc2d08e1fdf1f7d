package types

import "sort"

// LineTable maps byte offsets to 1-based line and column numbers.
// Entry i is the byte offset where line i+1 starts.
type LineTable []ByteOffset

// BuildLineTable scans src once for line starts. LF, CRLF and lone CR all
// terminate a line.
func BuildLineTable(src []byte) LineTable {
	table := LineTable{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			table = append(table, ByteOffset(i+1))
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			table = append(table, ByteOffset(i+1))
		}
	}
	return table
}

// LineCol returns the 1-based line and byte column of offset.
// Returns (0, 0) for an empty table.
func (t LineTable) LineCol(offset ByteOffset) (line, col int) {
	if len(t) == 0 {
		return 0, 0
	}
	idx := sort.Search(len(t), func(i int) bool { return t[i] > offset }) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, int(offset-t[idx]) + 1
}

// Offset returns the byte offset of a 1-based line and column, the inverse
// of LineCol. Returns false when line is out of range.
func (t LineTable) Offset(line, col int) (ByteOffset, bool) {
	if line < 1 || line > len(t) || col < 1 {
		return 0, false
	}
	return t[line-1] + ByteOffset(col-1), true
}
