package types

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Severity levels for diagnostics. Lower values are more severe.
type Severity int

const (
	SeverityFatal   Severity = 0 // Construct aborted (ParseError only)
	SeverityWarning Severity = 1 // Format deviation, still usable
	SeverityInfo    Severity = 2 // Stylistic or deprecated usage
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity maps a severity name back to its value.
func ParseSeverity(name string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fatal":
		return SeverityFatal, true
	case "warning", "warn":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	}
	return 0, false
}

// Category classifies what kind of construct an issue concerns.
type Category int

const (
	CategoryStructural Category = iota // missing declaration, field-count mismatch
	CategorySemantic                   // out-of-range or unparseable typed value
	CategoryExtension                  // unregistered or failing custom section
	CategoryMarkup                     // override tag problems
)

func (c Category) String() string {
	switch c {
	case CategoryStructural:
		return "structural"
	case CategorySemantic:
		return "semantic"
	case CategoryExtension:
		return "extension"
	case CategoryMarkup:
		return "markup"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Issue is a recoverable diagnostic. Parsing continues after one is recorded.
type Issue struct {
	Category   Category
	Severity   Severity
	Code       string // e.g. "field-missing", "tag-unknown"
	Span       Span
	Message    string
	Suggestion string // optional
}

// String returns "[severity] category/code: message" with the suggestion
// appended when present.
func (i Issue) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(i.Severity.String())
	b.WriteString("] ")
	b.WriteString(i.Category.String())
	if i.Code != "" {
		b.WriteByte('/')
		b.WriteString(i.Code)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	if i.Suggestion != "" {
		fmt.Fprintf(&b, " (%s)", i.Suggestion)
	}
	return b.String()
}

// SortIssues orders issues by span, keeping insertion order for ties.
func SortIssues(issues []Issue) {
	slices.SortStableFunc(issues, func(a, b Issue) int {
		return a.Span.Compare(b.Span)
	})
}

// ErrorKind identifies the fatal condition behind a ParseError.
type ErrorKind int

const (
	ErrKindEncoding ErrorKind = iota
	ErrKindEmptyFormat
	ErrKindRecordOutsideSection
	ErrKindKeywordNotAllowed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindEncoding:
		return "encoding"
	case ErrKindEmptyFormat:
		return "empty-format"
	case ErrKindRecordOutsideSection:
		return "record-outside-section"
	case ErrKindKeywordNotAllowed:
		return "keyword-not-allowed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ErrEncoding is matched by ParseErrors of kind ErrKindEncoding.
var ErrEncoding = errors.New("source is not decodable text")

// ParseError is a fatal diagnostic. It aborts the current record or
// section, never the whole document, except for ErrKindEncoding.
type ParseError struct {
	Kind    ErrorKind
	Span    Span
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d..%d: %s", e.Kind, e.Span.Start, e.Span.End, e.Message)
}

// Is lets errors.Is(err, ErrEncoding) match encoding failures.
func (e *ParseError) Is(target error) bool {
	return target == ErrEncoding && e.Kind == ErrKindEncoding
}

// DiagnosticConfig controls which recoverable issues are reported.
// ParseErrors are never filtered.
type DiagnosticConfig struct {
	// MinSeverity is the least severe level still reported.
	// Issues with severity > MinSeverity are suppressed. The zero value is
	// SeverityFatal, so a zero config reports no issues at all.
	MinSeverity Severity

	// Overrides change severity for specific issue codes.
	Overrides map[string]Severity

	// Ignore lists issue codes to suppress entirely.
	// Supports glob patterns (e.g., "tag-*").
	Ignore []string
}

// DefaultConfig reports every issue.
func DefaultConfig() DiagnosticConfig {
	return DiagnosticConfig{MinSeverity: SeverityInfo}
}

// WarningsOnly suppresses Info issues.
func WarningsOnly() DiagnosticConfig {
	return DiagnosticConfig{MinSeverity: SeverityWarning}
}

// Apply returns the issue adjusted for this configuration and whether it
// should be reported at all.
func (c DiagnosticConfig) Apply(issue Issue) (Issue, bool) {
	if slices.ContainsFunc(c.Ignore, func(pattern string) bool {
		return MatchGlob(pattern, issue.Code)
	}) {
		return issue, false
	}
	if override, ok := c.Overrides[issue.Code]; ok && override != SeverityFatal {
		issue.Severity = override
	}
	return issue, issue.Severity <= c.MinSeverity
}

// Filter applies the configuration to a list of issues in place.
func (c DiagnosticConfig) Filter(issues []Issue) []Issue {
	out := issues[:0]
	for _, issue := range issues {
		if adjusted, ok := c.Apply(issue); ok {
			out = append(out, adjusted)
		}
	}
	return out
}

// MatchGlob performs simple glob matching with a leading or trailing *
// wildcard. Matching is exact otherwise.
func MatchGlob(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(s, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(s, suffix)
	}
	return pattern == s
}
