package script

import (
	"fmt"
	"iter"
	"strings"

	"github.com/gossa/gossa/internal/builtins"
)

// SectionProcessor handles a non-standard section. Validate is called for
// every matching section; Process only when structured data is requested.
type SectionProcessor interface {
	Validate(RawSection) []Issue
	Process(RawSection) (any, error)
}

// RawSection is the processor's view of a section: its records exactly as
// parsed, untyped.
type RawSection struct {
	Name    string
	Header  Span
	Records []*Record
	Source  []byte
}

// Entries yields the key/value pairs of the section, skipping raw lines.
func (s RawSection) Entries() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, r := range s.Records {
			if r.Raw {
				continue
			}
			k, v := r.Entry()
			if !yield(k, v) {
				return
			}
		}
	}
}

// ValidateFunc adapts a validation function to a SectionProcessor whose
// Process returns the section's entries as a map.
type ValidateFunc func(RawSection) []Issue

func (f ValidateFunc) Validate(s RawSection) []Issue { return f(s) }

func (f ValidateFunc) Process(s RawSection) (any, error) {
	m := make(map[string]string)
	for k, v := range s.Entries() {
		m[k] = v
	}
	return m, nil
}

// Handle identifies one registration.
type Handle struct {
	pattern string
	id      int
}

// Pattern returns the pattern the handle was registered under.
func (h Handle) Pattern() string { return h.pattern }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.id == 0 }

type binding struct {
	key       string // normalized pattern without '*'
	prefix    bool   // "key*"
	suffix    bool   // "*key"
	processor SectionProcessor
	handle    Handle
}

// Registry maps section name patterns to processors. Register everything
// before parsing; the registry is read-only during a parse and provides
// no locking of its own.
type Registry struct {
	bindings []binding
	exact    map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{exact: make(map[string]int)}
}

// Register binds a pattern to a processor. A pattern is an exact section
// name or a glob with one leading or trailing '*'. Names match the way
// headers do, ignoring case and repeated whitespace.
func (r *Registry) Register(pattern string, p SectionProcessor) (Handle, error) {
	if p == nil {
		return Handle{}, fmt.Errorf("%w: nil processor for %q", ErrInvalidPattern, pattern)
	}
	b, err := compilePattern(pattern)
	if err != nil {
		return Handle{}, err
	}
	for _, existing := range r.bindings {
		if existing.key == b.key && existing.prefix == b.prefix && existing.suffix == b.suffix {
			return Handle{}, fmt.Errorf("%w: %q", ErrAlreadyRegistered, pattern)
		}
	}
	b.processor = p
	b.handle = Handle{pattern: pattern, id: len(r.bindings) + 1}
	if r.exact == nil {
		r.exact = make(map[string]int)
	}
	if !b.prefix && !b.suffix {
		r.exact[b.key] = len(r.bindings)
	}
	r.bindings = append(r.bindings, b)
	return b.handle, nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(pattern string, p SectionProcessor) Handle {
	h, err := r.Register(pattern, p)
	if err != nil {
		panic(err)
	}
	return h
}

func compilePattern(pattern string) (binding, error) {
	p := strings.TrimSpace(pattern)
	var b binding
	switch {
	case p == "":
		return b, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	case p == "*":
		b.prefix = true
	case strings.HasSuffix(p, "*"):
		b.prefix = true
		p = strings.TrimSuffix(p, "*")
	case strings.HasPrefix(p, "*"):
		b.suffix = true
		p = strings.TrimPrefix(p, "*")
	}
	if strings.Contains(p, "*") {
		return b, fmt.Errorf("%w: %q has '*' inside the name", ErrInvalidPattern, pattern)
	}
	b.key = builtins.NormalizeSectionName(p)
	return b, nil
}

// Resolve returns the processor for a section name: an exact registration
// first, otherwise the glob with the longest literal part. A nil registry
// resolves nothing.
func (r *Registry) Resolve(name string) (SectionProcessor, Handle, bool) {
	if r == nil {
		return nil, Handle{}, false
	}
	key := builtins.NormalizeSectionName(name)
	if i, ok := r.exact[key]; ok {
		b := r.bindings[i]
		return b.processor, b.handle, true
	}
	best := -1
	for i, b := range r.bindings {
		match := (b.prefix && strings.HasPrefix(key, b.key)) ||
			(b.suffix && strings.HasSuffix(key, b.key))
		if match && (best < 0 || len(b.key) > len(r.bindings[best].key)) {
			best = i
		}
	}
	if best < 0 {
		return nil, Handle{}, false
	}
	b := r.bindings[best]
	return b.processor, b.handle, true
}

// Patterns returns the registered patterns in registration order.
func (r *Registry) Patterns() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = b.handle.pattern
	}
	return out
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.bindings)
}
