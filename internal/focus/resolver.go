package focus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Strategy identifies which resolution step matched a spec. Cheaper
// strategies take precedence and are mutually exclusive per spec.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyExactPath
	StrategyRootChild
	StrategyOneLevelDown
	StrategyWalk
)

func (s Strategy) String() string {
	switch s {
	case StrategyExactPath:
		return "exact-path"
	case StrategyRootChild:
		return "root-child"
	case StrategyOneLevelDown:
		return "one-level-down"
	case StrategyWalk:
		return "bounded-walk"
	default:
		return "none"
	}
}

// walkMaxDepth bounds the last-resort tree walk.
const walkMaxDepth = 3

// Resolved binds a PathSpec to a directory that existed at resolution
// time. Recomputed every run, never cached.
type Resolved struct {
	Spec     PathSpec
	Path     string // absolute
	Rel      string // slash-separated, relative to the project root
	Strategy Strategy
}

// NotFoundError reports a spec that matched no directory after all
// fallback strategies.
type NotFoundError struct {
	Spec string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("focus directory %q not found", e.Spec)
}

// Resolver locates focus directories under a fixed project root.
type Resolver struct {
	root string
	log  *zap.Logger
}

// NewResolver creates a Resolver. A nil logger keeps it silent.
func NewResolver(root string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{root: root, log: log}
}

// Resolve tries each strategy in order and returns the first match:
//
//  1. exact relative path from root
//  2. bare final component directly under root
//  3. final component one level down
//  4. bounded walk (depth ≤ 3) for a directory with that name
//
// Returns NotFoundError when nothing matches.
func (r *Resolver) Resolve(spec PathSpec) (Resolved, error) {
	if len(spec.Segments) == 0 {
		return Resolved{}, NotFoundError{Spec: spec.Raw}
	}

	if p := r.exactPath(spec); p != "" {
		return r.resolved(spec, p, StrategyExactPath), nil
	}
	if p := r.rootChild(spec); p != "" {
		return r.resolved(spec, p, StrategyRootChild), nil
	}
	if p := r.oneLevelDown(spec); p != "" {
		return r.resolved(spec, p, StrategyOneLevelDown), nil
	}
	if p := r.boundedWalk(spec.Final()); p != "" {
		return r.resolved(spec, p, StrategyWalk), nil
	}
	return Resolved{}, NotFoundError{Spec: spec.Raw}
}

// ResolveAll resolves every spec, dropping unresolved ones with a
// diagnostic. The result is de-duplicated by path and sorted
// shallowest-first (stable), so parent directories are established
// before their children when the caller computes coverage.
func (r *Resolver) ResolveAll(specs []PathSpec) []Resolved {
	var out []Resolved
	seen := make(map[string]struct{})

	for _, spec := range specs {
		res, err := r.Resolve(spec)
		if err != nil {
			r.log.Warn("focus spec dropped", zap.String("spec", spec.Raw), zap.Error(err))
			continue
		}
		if _, dup := seen[res.Path]; dup {
			r.log.Debug("focus spec duplicates earlier match",
				zap.String("spec", spec.Raw), zap.String("path", res.Path))
			continue
		}
		seen[res.Path] = struct{}{}
		out = append(out, res)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return pathDepth(out[i].Rel) < pathDepth(out[j].Rel)
	})
	return out
}

func (r *Resolver) resolved(spec PathSpec, abs string, strategy Strategy) Resolved {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		rel = abs
	}
	return Resolved{
		Spec:     spec,
		Path:     abs,
		Rel:      filepath.ToSlash(rel),
		Strategy: strategy,
	}
}

func (r *Resolver) exactPath(spec PathSpec) string {
	return dirOrEmpty(filepath.Join(r.root, filepath.FromSlash(spec.Rel())))
}

func (r *Resolver) rootChild(spec PathSpec) string {
	return dirOrEmpty(filepath.Join(r.root, spec.Final()))
}

func (r *Resolver) oneLevelDown(spec PathSpec) string {
	for _, sub := range sortedSubdirs(r.root) {
		if p := dirOrEmpty(filepath.Join(r.root, sub, spec.Final())); p != "" {
			return p
		}
	}
	return ""
}

// boundedWalk searches breadth-first for a directory literally named
// name, stopping at walkMaxDepth. Hidden directories are not descended.
func (r *Resolver) boundedWalk(name string) string {
	type frame struct {
		path  string
		depth int
	}
	queue := []frame{{r.root, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= walkMaxDepth {
			continue
		}
		for _, sub := range sortedSubdirs(cur.path) {
			full := filepath.Join(cur.path, sub)
			if sub == name {
				return full
			}
			queue = append(queue, frame{full, cur.depth + 1})
		}
	}
	return ""
}

// dirOrEmpty returns path if it exists and is a directory, else "".
func dirOrEmpty(path string) string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return ""
	}
	return path
}

// sortedSubdirs lists non-hidden immediate subdirectories, sorted for
// deterministic resolution. Read failures yield an empty list.
func sortedSubdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var subs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			subs = append(subs, e.Name())
		}
	}
	sort.Strings(subs)
	return subs
}

func pathDepth(rel string) int {
	if rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}
