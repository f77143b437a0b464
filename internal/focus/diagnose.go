package focus

import (
	"path/filepath"
	"strings"
)

// diagnoseWalkDepth bounds the exhaustive strategies in Diagnose. It is
// deeper than the resolver's walk because diagnostics favor recall over
// speed.
const diagnoseWalkDepth = 5

// Match is one candidate directory found by Diagnose.
type Match struct {
	Path     string // absolute
	Rel      string
	Strategy string
}

// Diagnose runs every search strategy for a bare directory name,
// including the case-insensitive and partial-match strategies that the
// normal resolver never uses. Intended for the `find` diagnostic
// command: it reports all matches instead of stopping at the first.
func Diagnose(root, name string) []Match {
	var matches []Match
	seen := make(map[string]string) // path -> first strategy

	add := func(path, strategy string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = strategy
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		matches = append(matches, Match{
			Path:     path,
			Rel:      filepath.ToSlash(rel),
			Strategy: strategy,
		})
	}

	// Strategy 1: direct top-level lookup.
	if p := dirOrEmpty(filepath.Join(root, name)); p != "" {
		add(p, "top-level")
	}

	// Strategy 2: one level down.
	for _, sub := range sortedSubdirs(root) {
		if p := dirOrEmpty(filepath.Join(root, sub, name)); p != "" {
			add(p, "one-level-down")
		}
	}

	// Strategies 3 and 4: case-insensitive and partial matches over a
	// bounded walk.
	lower := strings.ToLower(name)
	walkDirs(root, diagnoseWalkDepth, func(path, dirName string) {
		dn := strings.ToLower(dirName)
		if dn == lower {
			add(path, "case-insensitive")
		} else if strings.Contains(dn, lower) {
			add(path, "partial")
		}
	})

	return matches
}

// walkDirs visits every non-hidden directory under root up to maxDepth,
// calling fn with the absolute path and the directory name.
func walkDirs(root string, maxDepth int, fn func(path, name string)) {
	type frame struct {
		path  string
		depth int
	}
	queue := []frame{{root, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, sub := range sortedSubdirs(cur.path) {
			full := filepath.Join(cur.path, sub)
			fn(full, sub)
			queue = append(queue, frame{full, cur.depth + 1})
		}
	}
}
