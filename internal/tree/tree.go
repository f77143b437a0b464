// Package tree renders a depth-bounded ASCII tree for a directory.
//
// Rendering is a pure function of the filesystem snapshot and the options:
// two immediate calls over an unchanged tree produce identical output.
// Entries are sorted files-first, then directories, alphabetical within
// each group.
package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/scopegen/scopegen/internal/classify"
)

const (
	connectorMid  = "├── "
	connectorLast = "└── "
	branchCont    = "│   "
	branchBlank   = "    "
)

// Line is one rendered row of a tree. Immutable; consumers only
// concatenate rendered lines into a document.
type Line struct {
	Depth  int
	IsLast bool
	Name   string
	IsDir  bool
	Prefix string // accumulated branch glyphs for ancestors
}

// Render returns the printable form of the line.
func (l Line) Render() string {
	connector := connectorMid
	if l.IsLast {
		connector = connectorLast
	}
	name := l.Name
	if l.IsDir {
		name += "/"
	}
	return l.Prefix + connector + name
}

// Join concatenates rendered lines into a single document body.
func Join(lines []Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Render()
	}
	return strings.Join(parts, "\n")
}

// Options control one render call.
type Options struct {
	// Extensions overrides the classifier's allow-list for this call
	// when non-nil.
	Extensions []string
	// SkipRelPaths holds project-root-relative paths to drop outright.
	SkipRelPaths map[string]struct{}
	// CoveredPrefixes holds project-root-relative directory paths that
	// are rendered independently elsewhere; directories overlapping one
	// of these prefixes are suppressed so no subtree appears twice.
	CoveredPrefixes []string
	// MaxDepth bounds recursion; children of the render root are at
	// depth 0 and entries deeper than MaxDepth are dropped. Zero means
	// "direct children only"; use DefaultMaxDepth for the usual bound.
	MaxDepth int
}

// DefaultMaxDepth is the depth bound used when callers have no opinion.
const DefaultMaxDepth = 3

// Renderer draws trees using a classifier for visibility decisions.
type Renderer struct {
	classifier  *classify.Classifier
	projectRoot string
}

// New creates a Renderer. projectRoot anchors the relative paths used by
// skip and covered-prefix checks; it may differ from the directory being
// rendered.
func New(classifier *classify.Classifier, projectRoot string) *Renderer {
	return &Renderer{classifier: classifier, projectRoot: projectRoot}
}

// Render walks dir and returns the rendered lines. An unreadable
// subdirectory loses its children but does not fail the render; only an
// unreadable render root is an error.
func (r *Renderer) Render(dir string, opts Options) ([]Line, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", dir, err)
	}
	var lines []Line
	r.walk(dir, "", 0, opts, &lines)
	return lines, nil
}

func (r *Renderer) walk(dir, prefix string, depth int, opts Options, lines *[]Line) {
	if depth > opts.MaxDepth {
		return
	}

	children := r.visibleChildren(dir, opts)
	for i, entry := range children {
		isLast := i == len(children)-1
		*lines = append(*lines, Line{
			Depth:  depth,
			IsLast: isLast,
			Name:   entry.Name(),
			IsDir:  entry.IsDir(),
			Prefix: prefix,
		})

		if entry.IsDir() {
			next := prefix + branchCont
			if isLast {
				next = prefix + branchBlank
			}
			r.walk(filepath.Join(dir, entry.Name()), next, depth+1, opts, lines)
		}
	}
}

// visibleChildren lists, filters, and sorts the children of dir. The
// filtered list is computed up front so the last-sibling marker is
// correct. Read failures yield an empty list: the entry's subtree is
// silently dropped per the partial-success contract.
func (r *Renderer) visibleChildren(dir string, opts Options) []os.DirEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	visible := entries[:0]
	for _, entry := range entries {
		rel := r.relPath(filepath.Join(dir, entry.Name()))
		if !r.classifier.Visible(entry, rel, opts.Extensions) {
			continue
		}
		if _, skip := opts.SkipRelPaths[rel]; skip {
			continue
		}
		if entry.IsDir() && coveredByPrefix(rel, opts.CoveredPrefixes) {
			continue
		}
		visible = append(visible, entry)
	}

	// Files before directories, alphabetical within each group.
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].IsDir() != visible[j].IsDir() {
			return !visible[i].IsDir()
		}
		return visible[i].Name() < visible[j].Name()
	})
	return visible
}

func (r *Renderer) relPath(full string) string {
	rel, err := filepath.Rel(r.projectRoot, full)
	if err != nil {
		return filepath.ToSlash(full)
	}
	return filepath.ToSlash(rel)
}

// coveredByPrefix reports whether rel overlaps any covered prefix in
// either direction: rel inside a covered subtree, or a covered subtree
// inside rel.
func coveredByPrefix(rel string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if rel == p || strings.HasPrefix(rel, p+"/") || strings.HasPrefix(p, rel+"/") {
			return true
		}
	}
	return false
}
