// Package classify decides which filesystem entries are visible to the
// tree renderer and the density scanner.
//
// Precedence is fixed: explicit exclude names win over everything, then
// the injected ignore predicate, then the directory/file split. Directories
// are never filtered by extension; files must match the allow-list.
package classify

import (
	"io/fs"

	"github.com/scopegen/scopegen/internal/ignore"
)

// Classifier holds the configuration-derived sets used for visibility
// decisions. The zero value makes everything visible.
type Classifier struct {
	excludeNames map[string]struct{}
	extensions   map[string]struct{}
	ignored      ignore.Predicate
}

// New creates a Classifier from the raw configuration slices.
// A nil predicate means nothing is ignored.
func New(excludeNames, extensions []string, ignored ignore.Predicate) *Classifier {
	if ignored == nil {
		ignored = ignore.None
	}
	return &Classifier{
		excludeNames: toSet(excludeNames),
		extensions:   toSet(extensions),
		ignored:      ignored,
	}
}

// Excluded reports whether a bare directory name is in the exclude set.
// Exclusion is transitive: callers must not recurse into excluded entries.
func (c *Classifier) Excluded(name string) bool {
	_, ok := c.excludeNames[name]
	return ok
}

// Visible reports whether an entry should appear in a rendered tree.
// relPath is relative to the project root, slash-separated. A non-nil
// override extension list takes precedence over the configured allow-list
// for this call only.
func (c *Classifier) Visible(entry fs.DirEntry, relPath string, override []string) bool {
	if c.Excluded(entry.Name()) {
		return false
	}
	if c.ignored(relPath) {
		return false
	}
	if entry.IsDir() {
		return true
	}

	exts := c.extensions
	if override != nil {
		exts = toSet(override)
	}
	if len(exts) == 0 {
		return true
	}
	return MatchesExtension(entry.Name(), exts)
}

// MatchesExtension reports whether name ends with one of the extensions.
// Suffix comparison (not filepath.Ext) so multi-dot extensions like
// ".d.ts" in an allow-list behave as expected.
func MatchesExtension(name string, extensions map[string]struct{}) bool {
	for ext := range extensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// ToSet exposes set construction for packages that share the allow-list
// representation.
func ToSet(values []string) map[string]struct{} {
	return toSet(values)
}
