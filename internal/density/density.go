// Package density ranks directories by how much recognized code they
// contain. It is the heuristic fallback used when no configured focus
// directory resolves.
package density

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/scopegen/scopegen/internal/classify"
	"go.uber.org/zap"
)

const (
	// DefaultMaxDepth bounds the scan walk.
	DefaultMaxDepth = 4
	// SignificanceThreshold is the minimum accumulated code-file count
	// for a directory to be ranked.
	SignificanceThreshold = 3

	// subdirEnrichmentCap: subdirectories are only added when the
	// top-level set is this small, and only this many top-level
	// directories contribute them.
	subdirEnrichmentCap = 3
	// subdirsPerTopLevel is how many subdirectories each eligible
	// top-level directory contributes.
	subdirsPerTopLevel = 2
)

// Record is one directory's accumulated code-file count. Counts roll up:
// a file increments its directory and every ancestor below the root.
type Record struct {
	RelPath string
	Count   int
}

// Scanner walks a project and counts code files per directory.
type Scanner struct {
	extensions     map[string]struct{}
	excludeNames   map[string]struct{}
	importantNames map[string]struct{}
	maxDepth       int
	log            *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxDepth overrides the walk depth bound.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) { s.maxDepth = depth }
}

// WithImportantNames marks directory names that count as significant
// even below the code-file threshold.
func WithImportantNames(names []string) Option {
	return func(s *Scanner) { s.importantNames = classify.ToSet(names) }
}

// WithLogger attaches a diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scanner) { s.log = log }
}

// New creates a Scanner over the given code extensions and excluded
// directory names.
func New(extensions, excludeNames []string, opts ...Option) *Scanner {
	s := &Scanner{
		extensions:   classify.ToSet(extensions),
		excludeNames: classify.ToSet(excludeNames),
		maxDepth:     DefaultMaxDepth,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Counts walks root once and returns the accumulated per-directory
// counts. Excluded and hidden directories are not descended. Read
// failures skip the affected directory, never abort the walk.
func (s *Scanner) Counts(root string) map[string]int {
	counts := make(map[string]int)
	s.walk(root, "", 0, counts)
	return counts
}

func (s *Scanner) walk(dir, rel string, depth int, counts map[string]int) {
	if depth > s.maxDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Debug("density walk skipping unreadable directory",
			zap.String("dir", dir), zap.Error(err))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if strings.HasPrefix(name, ".") {
				continue
			}
			if _, excluded := s.excludeNames[name]; excluded {
				continue
			}
			s.walk(filepath.Join(dir, name), joinRel(rel, name), depth+1, counts)
			continue
		}
		if rel == "" {
			// Files directly under the root have no owning directory.
			continue
		}
		if classify.MatchesExtension(name, s.extensions) {
			// Credit the owning directory and every ancestor below root.
			for p := rel; p != ""; p = parentRel(p) {
				counts[p]++
			}
		}
	}
}

// Scan ranks directories and returns focus candidates as relative
// paths: every significant top-level directory by descending count,
// then — only when there are at most three top-level results — up to
// two of each one's highest-count subdirectories. An empty result means
// nothing met the threshold and the caller should fall back further.
func (s *Scanner) Scan(root string) []string {
	counts := s.Counts(root)

	significant := make(map[string]int)
	for rel, count := range counts {
		if count >= SignificanceThreshold || s.hasImportantChild(root, rel) {
			significant[rel] = count
		}
	}
	if len(significant) == 0 {
		s.log.Debug("density scan found no significant directories")
		return nil
	}

	var topLevel []string
	for rel := range significant {
		if !strings.Contains(rel, "/") {
			topLevel = append(topLevel, rel)
		}
	}
	sortByCountDesc(topLevel, significant)

	focus := append([]string(nil), topLevel...)

	if len(topLevel) <= subdirEnrichmentCap {
		for _, top := range topLevel {
			var subs []string
			for rel := range significant {
				if strings.HasPrefix(rel, top+"/") {
					subs = append(subs, rel)
				}
			}
			sortByCountDesc(subs, significant)
			if len(subs) > subdirsPerTopLevel {
				subs = subs[:subdirsPerTopLevel]
			}
			focus = append(focus, subs...)
		}
	}

	s.log.Info("density scan selected focus candidates",
		zap.Int("candidates", len(focus)), zap.Int("significant", len(significant)))
	return focus
}

// Ranked returns every significant directory with its count, ordered by
// descending count then name. Used by the analyze diagnostic.
func (s *Scanner) Ranked(root string) []Record {
	counts := s.Counts(root)
	var records []Record
	for rel, count := range counts {
		if count >= SignificanceThreshold {
			records = append(records, Record{RelPath: rel, Count: count})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Count != records[j].Count {
			return records[i].Count > records[j].Count
		}
		return records[i].RelPath < records[j].RelPath
	})
	return records
}

// TopLevelDirs is the final fallback: plain non-hidden, non-excluded
// top-level directory names, unfiltered by code content.
func (s *Scanner) TopLevelDirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, excluded := s.excludeNames[name]; excluded {
			continue
		}
		dirs = append(dirs, name)
	}
	sort.Strings(dirs)
	return dirs
}

// hasImportantChild reports whether the directory at rel has an
// immediate subdirectory whose name is marked important.
func (s *Scanner) hasImportantChild(root, rel string) bool {
	if len(s.importantNames) == 0 {
		return false
	}
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := s.importantNames[entry.Name()]; ok {
			return true
		}
	}
	return false
}

func sortByCountDesc(paths []string, counts map[string]int) {
	sort.Slice(paths, func(i, j int) bool {
		if counts[paths[i]] != counts[paths[j]] {
			return counts[paths[i]] > counts[paths[j]]
		}
		return paths[i] < paths[j]
	})
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}

func parentRel(rel string) string {
	idx := strings.LastIndex(rel, "/")
	if idx < 0 {
		return ""
	}
	return rel[:idx]
}
