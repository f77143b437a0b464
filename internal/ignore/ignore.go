// Package ignore implements a gitignore-style path matcher.
//
// The matcher is deliberately approximate: it handles the common pattern
// shapes (bare names, trailing-slash directory patterns, globs, path
// prefixes) without promising full gitignore fidelity. Consumers receive
// it as a Predicate so the matching engine stays swappable.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Predicate reports whether a path (relative to the project root,
// slash-separated) should be treated as ignored.
type Predicate func(relPath string) bool

// None is a predicate that ignores nothing.
func None(string) bool { return false }

// defaultPatterns are always active regardless of ignore files.
var defaultPatterns = []string{".git", ".hg", ".svn"}

// LoadPatterns reads .gitignore and .scopeignore under root and returns
// the combined pattern list. Missing files are not an error.
func LoadPatterns(root string) []string {
	patterns := append([]string(nil), defaultPatterns...)

	read := func(name string) {
		f, err := os.Open(filepath.Join(root, name))
		if err != nil {
			return
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				patterns = append(patterns, line)
			}
		}
	}

	read(".gitignore")
	read(".scopeignore")
	return patterns
}

// Matches reports whether relPath matches any of the given patterns.
func Matches(relPath string, patterns []string) bool {
	relPath = filepath.ToSlash(relPath)
	parts := strings.Split(relPath, "/")

	for _, p := range patterns {
		// Directory pattern (e.g. "node_modules/") matches any segment.
		if strings.HasSuffix(p, "/") {
			clean := strings.TrimSuffix(p, "/")
			for _, part := range parts {
				if part == clean {
					return true
				}
			}
			continue
		}

		// Glob or exact match on the final component.
		if matched, _ := filepath.Match(p, filepath.Base(relPath)); matched {
			return true
		}

		// Path prefix match ("dist/bin" matches "dist/bin/app").
		if relPath == p || strings.HasPrefix(relPath, p+"/") {
			return true
		}
	}
	return false
}

// NewPredicate loads the ignore files under root and returns a Predicate
// over paths relative to that root.
func NewPredicate(root string) Predicate {
	patterns := LoadPatterns(root)
	return func(relPath string) bool {
		return Matches(relPath, patterns)
	}
}
