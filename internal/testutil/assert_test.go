package testutil

import (
	"os"
	"testing"

	"github.com/gossa/gossa/internal/types"
)

// mockTB captures whether a test failure occurred.
type mockTB struct {
	testing.TB // embedded for unimplemented methods
	failed     bool
}

func (m *mockTB) Helper()                           {}
func (m *mockTB) Fatal(args ...any)                 { m.failed = true }
func (m *mockTB) Fatalf(format string, args ...any) { m.failed = true }

func TestEqual(t *testing.T) {
	m := &mockTB{}

	Equal(m, 1, 1)
	if m.failed {
		t.Error("Equal(1, 1) should pass")
	}

	m.failed = false
	Equal(m, 1, 2)
	if !m.failed {
		t.Error("Equal(1, 2) should fail")
	}
}

func TestSliceEqual(t *testing.T) {
	m := &mockTB{}

	SliceEqual(m, []int{1, 2, 3}, []int{1, 2, 3})
	if m.failed {
		t.Error("equal slices should pass")
	}

	m.failed = false
	SliceEqual(m, []int{1, 2}, []int{1, 2, 3})
	if !m.failed {
		t.Error("different length slices should fail")
	}

	m.failed = false
	SliceEqual(m, []int{1, 2, 3}, []int{1, 9, 3})
	if !m.failed {
		t.Error("different content should fail")
	}
}

func TestNoErrorAndError(t *testing.T) {
	m := &mockTB{}

	NoError(m, nil)
	if m.failed {
		t.Error("NoError(nil) should pass")
	}
	NoError(m, os.ErrNotExist)
	if !m.failed {
		t.Error("NoError(err) should fail")
	}

	m.failed = false
	Error(m, nil)
	if !m.failed {
		t.Error("Error(nil) should fail")
	}
}

func TestIssueHelpers(t *testing.T) {
	issues := []types.Issue{
		{Code: types.DiagFieldMissing},
		{Code: types.DiagFieldMissing},
		{Code: types.DiagTagUnknown},
	}
	if got := IssueCount(issues, types.DiagFieldMissing); got != 2 {
		t.Errorf("IssueCount = %d, want 2", got)
	}

	m := &mockTB{}
	HasIssue(m, issues, types.DiagTagUnknown, 1)
	if m.failed {
		t.Error("HasIssue with the right count should pass")
	}
	HasIssue(m, issues, types.DiagTagUnknown, 2)
	if !m.failed {
		t.Error("HasIssue with the wrong count should fail")
	}

	m.failed = false
	NoIssues(m, issues)
	if !m.failed {
		t.Error("NoIssues should fail on a non-empty list")
	}
}

func TestFormatMsg(t *testing.T) {
	tests := []struct {
		args []any
		want string
	}{
		{nil, "assertion failed"},
		{[]any{"plain"}, "plain"},
		{[]any{"value %d", 3}, "value 3"},
		{[]any{42}, "assertion failed"},
	}
	for _, tt := range tests {
		if got := formatMsg(tt.args); got != tt.want {
			t.Errorf("formatMsg(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
