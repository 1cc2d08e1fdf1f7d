package types

import (
	"errors"
	"testing"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		want    bool
	}{
		// Wildcard only
		{"*", "anything", true},
		{"*", "", true},

		// Trailing wildcard
		{"tag-*", "tag-unknown", true},
		{"tag-*", "tag-", true},
		{"tag-*", "block-unterminated", false},
		{"tag-*", "tag", false},

		// Leading wildcard
		{"*-missing", "field-missing", true},
		{"*-Missing", "field-missing", false},

		// Exact match
		{"exact", "exact", true},
		{"exact", "other", false},

		// Edge cases
		{"", "", true},
		{"", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.s, func(t *testing.T) {
			got := MatchGlob(tt.pattern, tt.s)
			if got != tt.want {
				t.Errorf("MatchGlob(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
			}
		})
	}
}

func TestDiagnosticConfigApply(t *testing.T) {
	warn := Issue{Severity: SeverityWarning, Code: DiagFieldMissing}
	info := Issue{Severity: SeverityInfo, Code: DiagTagUnknown}

	tests := []struct {
		name    string
		cfg     DiagnosticConfig
		issue   Issue
		wantOK  bool
		wantSev Severity
	}{
		{"default reports warning", DefaultConfig(), warn, true, SeverityWarning},
		{"default reports info", DefaultConfig(), info, true, SeverityInfo},
		{"warnings only drops info", WarningsOnly(), info, false, SeverityInfo},
		{"ignore glob", DiagnosticConfig{MinSeverity: SeverityInfo, Ignore: []string{"field-*"}}, warn, false, SeverityWarning},
		{"override downgrades", DiagnosticConfig{
			MinSeverity: SeverityWarning,
			Overrides:   map[string]Severity{DiagFieldMissing: SeverityInfo},
		}, warn, false, SeverityInfo},
		{"override upgrades", DiagnosticConfig{
			MinSeverity: SeverityWarning,
			Overrides:   map[string]Severity{DiagTagUnknown: SeverityWarning},
		}, info, true, SeverityWarning},
		{"fatal override ignored", DiagnosticConfig{
			MinSeverity: SeverityInfo,
			Overrides:   map[string]Severity{DiagTagUnknown: SeverityFatal},
		}, info, true, SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.cfg.Apply(tt.issue)
			if ok != tt.wantOK {
				t.Fatalf("Apply reported %v, want %v", ok, tt.wantOK)
			}
			if got.Severity != tt.wantSev {
				t.Errorf("severity = %v, want %v", got.Severity, tt.wantSev)
			}
		})
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityInfo, Code: "a"},
		{Severity: SeverityWarning, Code: "b"},
		{Severity: SeverityWarning, Code: "c"},
	}
	got := WarningsOnly().Filter(issues)
	if len(got) != 2 || got[0].Code != "b" || got[1].Code != "c" {
		t.Fatalf("Filter = %v", got)
	}
}

func TestIssueString(t *testing.T) {
	issue := Issue{
		Category:   CategoryMarkup,
		Severity:   SeverityWarning,
		Code:       DiagBlockUnterminated,
		Message:    "override block is not closed",
		Suggestion: "add '}'",
	}
	want := "[warning] markup/block-unterminated: override block is not closed (add '}')"
	if got := issue.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseErrorIsEncoding(t *testing.T) {
	err := error(&ParseError{Kind: ErrKindEncoding, Message: "bad"})
	if !errors.Is(err, ErrEncoding) {
		t.Error("encoding ParseError should match ErrEncoding")
	}
	other := error(&ParseError{Kind: ErrKindEmptyFormat})
	if errors.Is(other, ErrEncoding) {
		t.Error("empty-format ParseError should not match ErrEncoding")
	}
}

func TestSpanHelpers(t *testing.T) {
	src := []byte("Hello, world")
	s := SpanOf(7, 12)
	if got := s.Text(src); got != "world" {
		t.Errorf("Text = %q", got)
	}
	if s.Len() != 5 || s.IsEmpty() {
		t.Errorf("Len/IsEmpty wrong for %v", s)
	}
	if got := SpanOf(0, 99).Text(src); got != "Hello, world" {
		t.Errorf("clamped Text = %q", got)
	}
	if !s.Contains(7) || s.Contains(12) {
		t.Error("Contains should be half-open")
	}
	if c := SpanOf(0, 2).Cover(s); c != SpanOf(0, 12) {
		t.Errorf("Cover = %v", c)
	}
	if SpanOf(1, 2).Compare(SpanOf(1, 3)) >= 0 {
		t.Error("Compare should order by end on equal start")
	}
}

func TestLineTable(t *testing.T) {
	src := []byte("line1\nline2\r\nline3\rline4")
	table := BuildLineTable(src)

	tests := []struct {
		name     string
		offset   ByteOffset
		wantLine int
		wantCol  int
	}{
		{"start of file", 0, 1, 1},
		{"middle of line 1", 3, 1, 4},
		{"end of line 1 (newline)", 5, 1, 6},
		{"start of line 2", 6, 2, 1},
		{"start of line 3 after CRLF", 13, 3, 1},
		{"start of line 4 after CR", 19, 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col := table.LineCol(tt.offset)
			if line != tt.wantLine || col != tt.wantCol {
				t.Errorf("LineCol(%d) = (%d, %d), want (%d, %d)",
					tt.offset, line, col, tt.wantLine, tt.wantCol)
			}
			off, ok := table.Offset(line, col)
			if !ok || off != tt.offset {
				t.Errorf("Offset(%d, %d) = %d, %v", line, col, off, ok)
			}
		})
	}

	var empty LineTable
	if line, col := empty.LineCol(5); line != 0 || col != 0 {
		t.Errorf("empty LineCol = (%d, %d)", line, col)
	}
}
