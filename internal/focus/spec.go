// Package focus resolves configured focus-directory specifiers to real
// directories under a project root.
package focus

import (
	"path"
	"strings"
)

// DefaultSeparators are the characters treated as path separators inside
// bare spec names. The convention is configurable because a directory
// literally named "my_utils" is indistinguishable from an intended
// "my/utils" without more context.
var DefaultSeparators = []string{"_"}

// PathSpec is a not-yet-resolved focus-directory specifier as given by
// configuration or CLI input.
type PathSpec struct {
	Raw      string
	Segments []string
}

// Parse interprets a raw specifier:
//
//   - slash-delimited specs are split positionally ("src/components");
//   - names containing a double underscore are kept verbatim as one
//     literal segment ("__tests__", "my__thing");
//   - otherwise each configured separator acts as a path separator
//     ("api_tests" → api/tests).
//
// A nil separator list means DefaultSeparators.
func Parse(raw string, separators []string) PathSpec {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	if raw == "" {
		return PathSpec{Raw: raw}
	}
	if strings.Contains(raw, "/") {
		return PathSpec{Raw: raw, Segments: splitClean(raw, "/")}
	}
	if strings.Contains(raw, "__") {
		return PathSpec{Raw: raw, Segments: []string{raw}}
	}

	if separators == nil {
		separators = DefaultSeparators
	}
	expanded := raw
	for _, sep := range separators {
		expanded = strings.ReplaceAll(expanded, sep, "/")
	}
	return PathSpec{Raw: raw, Segments: splitClean(expanded, "/")}
}

// ParseAll parses a list of raw specifiers, dropping empties.
func ParseAll(raws []string, separators []string) []PathSpec {
	specs := make([]PathSpec, 0, len(raws))
	for _, raw := range raws {
		spec := Parse(raw, separators)
		if len(spec.Segments) > 0 {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Rel returns the slash-joined relative path the spec denotes.
func (s PathSpec) Rel() string {
	return path.Join(s.Segments...)
}

// Depth returns the number of path segments.
func (s PathSpec) Depth() int {
	return len(s.Segments)
}

// Final returns the last path segment, the directory's own name.
func (s PathSpec) Final() string {
	if len(s.Segments) == 0 {
		return ""
	}
	return s.Segments[len(s.Segments)-1]
}

func splitClean(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
