package focus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkDirs(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(p)), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
	}
}

func TestResolve_ExactPathTakesPrecedence(t *testing.T) {
	root := t.TempDir()
	// src/components exists exactly; a decoy with the same final name
	// sits deeper where only the bounded walk would find it.
	mkDirs(t, root, []string{"src/components", "app/deep/components"})

	r := NewResolver(root, nil)
	res, err := r.Resolve(Parse("src/components", nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if res.Strategy != StrategyExactPath {
		t.Errorf("Strategy = %v, want exact-path", res.Strategy)
	}
	if res.Rel != "src/components" {
		t.Errorf("Rel = %q, want src/components", res.Rel)
	}
}

func TestResolve_RootChild(t *testing.T) {
	root := t.TempDir()
	mkDirs(t, root, []string{"api"})

	r := NewResolver(root, nil)
	res, err := r.Resolve(Parse("api", nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Depth-1 bare names satisfy the exact-path strategy first.
	if res.Strategy != StrategyExactPath {
		t.Errorf("Strategy = %v, want exact-path", res.Strategy)
	}
	if res.Rel != "api" {
		t.Errorf("Rel = %q, want api", res.Rel)
	}
}

func TestResolve_DoubleUnderscore_OneLevelDown(t *testing.T) {
	root := t.TempDir()
	mkDirs(t, root, []string{"src/__tests__"})

	r := NewResolver(root, nil)
	res, err := r.Resolve(Parse("__tests__", nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if res.Strategy != StrategyOneLevelDown {
		t.Errorf("Strategy = %v, want one-level-down", res.Strategy)
	}
	if res.Rel != "src/__tests__" {
		t.Errorf("Rel = %q, want src/__tests__", res.Rel)
	}
}

func TestResolve_UnderscoreHeuristic(t *testing.T) {
	root := t.TempDir()
	// No literal api_tests anywhere, but api/tests exists.
	mkDirs(t, root, []string{"api/tests"})

	r := NewResolver(root, nil)
	res, err := r.Resolve(Parse("api_tests", nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if res.Rel != "api/tests" {
		t.Errorf("Rel = %q, want api/tests", res.Rel)
	}
	if res.Strategy != StrategyExactPath {
		t.Errorf("Strategy = %v, want exact-path", res.Strategy)
	}
}

func TestResolve_BoundedWalk(t *testing.T) {
	root := t.TempDir()
	mkDirs(t, root, []string{"a/b/target"})

	r := NewResolver(root, nil)
	res, err := r.Resolve(Parse("target", nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if res.Strategy != StrategyWalk {
		t.Errorf("Strategy = %v, want bounded-walk", res.Strategy)
	}
	if res.Rel != "a/b/target" {
		t.Errorf("Rel = %q, want a/b/target", res.Rel)
	}
}

func TestResolve_WalkDepthBound(t *testing.T) {
	root := t.TempDir()
	// Depth 4 from root: beyond the walk bound.
	mkDirs(t, root, []string{"a/b/c/target"})

	r := NewResolver(root, nil)
	_, err := r.Resolve(Parse("target", nil))

	var nf NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nf.Spec != "target" {
		t.Errorf("NotFoundError.Spec = %q, want target", nf.Spec)
	}
}

func TestResolve_FileIsNotADirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "api"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewResolver(root, nil)
	if _, err := r.Resolve(Parse("api", nil)); err == nil {
		t.Error("a plain file must not satisfy a directory spec")
	}
}

func TestResolveAll_DropsUnresolvedAndSortsShallowestFirst(t *testing.T) {
	root := t.TempDir()
	mkDirs(t, root, []string{"src/components", "api"})

	r := NewResolver(root, nil)
	resolved := r.ResolveAll(ParseAll([]string{"src/components", "missing", "api"}, nil))

	if len(resolved) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(resolved), resolved)
	}
	if resolved[0].Rel != "api" {
		t.Errorf("first = %q, want api (shallowest first)", resolved[0].Rel)
	}
	if resolved[1].Rel != "src/components" {
		t.Errorf("second = %q, want src/components", resolved[1].Rel)
	}
}

func TestResolveAll_Deduplicates(t *testing.T) {
	root := t.TempDir()
	mkDirs(t, root, []string{"api/tests"})

	r := NewResolver(root, nil)
	// Both specs resolve to the same directory.
	resolved := r.ResolveAll(ParseAll([]string{"api/tests", "api_tests"}, nil))

	if len(resolved) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(resolved), resolved)
	}
}

func TestResolveAll_EmptyResultIsNotAnError(t *testing.T) {
	r := NewResolver(t.TempDir(), nil)
	resolved := r.ResolveAll(ParseAll([]string{"ghost"}, nil))
	if len(resolved) != 0 {
		t.Errorf("resolved = %+v, want empty", resolved)
	}
}

func TestDiagnose_CaseInsensitiveAndPartial(t *testing.T) {
	root := t.TempDir()
	mkDirs(t, root, []string{"API", "src/api-v2", "src/unrelated"})

	matches := Diagnose(root, "api")

	strategies := make(map[string]string)
	for _, m := range matches {
		strategies[m.Rel] = m.Strategy
	}

	if strategies["API"] != "case-insensitive" {
		t.Errorf("API matched via %q, want case-insensitive", strategies["API"])
	}
	if strategies["src/api-v2"] != "partial" {
		t.Errorf("src/api-v2 matched via %q, want partial", strategies["src/api-v2"])
	}
	if _, ok := strategies["src/unrelated"]; ok {
		t.Error("unrelated directory should not match")
	}
}

func TestDiagnose_TopLevelFirst(t *testing.T) {
	root := t.TempDir()
	mkDirs(t, root, []string{"api", "src/api"})

	matches := Diagnose(root, "api")
	if len(matches) < 2 {
		t.Fatalf("matches = %+v, want both", matches)
	}
	if matches[0].Rel != "api" || matches[0].Strategy != "top-level" {
		t.Errorf("first match = %+v, want top-level api", matches[0])
	}
}
