package config

import (
	"path/filepath"
	"sort"
)

// Synthesize merges a fresh computation with an existing configuration:
//
//   - project_title: existing value wins, else derived from the root
//     directory name;
//   - tree_focus: always replaced by the fresh computation;
//   - exclude_dirs: union of existing and computed (idempotent, grows
//     monotonically across runs unless hand-edited);
//   - every other section: existing value kept when present, else
//     filled from defaults.
//
// existing may be nil when no configuration has been persisted yet.
func Synthesize(existing *Configuration, computedFocus, computedExclude []string, defaults Defaults, projectRoot string) *Configuration {
	if existing == nil {
		existing = &Configuration{}
	}

	out := &Configuration{
		ProjectTitle:     existing.ProjectTitle,
		FocusDirectories: append([]string(nil), computedFocus...),
	}
	if out.ProjectTitle == "" {
		abs, err := filepath.Abs(projectRoot)
		if err != nil {
			abs = projectRoot
		}
		out.ProjectTitle = filepath.Base(abs)
	}

	out.ExcludeDirs = unionSorted(existing.ExcludeDirs, computedExclude)

	out.ImportantDirs = existing.ImportantDirs
	if len(out.ImportantDirs) == 0 {
		out.ImportantDirs = defaults.ImportantDirs()
	}

	out.IncludeExtensions = existing.IncludeExtensions
	if len(out.IncludeExtensions) == 0 {
		out.IncludeExtensions = defaults.IncludeExtensions()
	}

	out.PathSeparators = existing.PathSeparators

	return out
}

func unionSorted(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
