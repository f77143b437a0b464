package descriptor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scopegen/scopegen/internal/focus"
	"github.com/scopegen/scopegen/internal/tree"
)

func resolved(t *testing.T, root, rel string) focus.Resolved {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(abs, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	return focus.Resolved{
		Spec: focus.Parse(rel, nil),
		Path: abs,
		Rel:  rel,
	}
}

func TestDocumentName(t *testing.T) {
	root := filepath.Join(t.TempDir(), "myproj")

	tests := []struct {
		rel  string
		want string
	}{
		{"src/components", "src_components"},     // depth > 1: first + last
		{"src/deep/nested", "src_nested"},        // still first + last
		{"api", "myproj_api"},                    // depth 1: parent + name
		{"__tests__", "__tests__"},               // double underscore: bare name
		{"src/__mocks__", "__mocks__"},           // bare name wins at any depth
	}

	for _, tt := range tests {
		res := resolved(t, root, tt.rel)
		if got := DocumentName(res); got != tt.want {
			t.Errorf("DocumentName(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}

func TestWrite_CreatesBothFiles(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "output")
	res := resolved(t, root, "api")

	lines := []tree.Line{
		{Name: "main.go", IsLast: false},
		{Name: "handlers", IsDir: true, IsLast: true},
	}

	w := NewWriter(out, "demo", "Base rules here.", nil)
	desc, err := w.Write(res, lines)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	agent, err := os.ReadFile(desc.AgentPath)
	if err != nil {
		t.Fatalf("read agent file: %v", err)
	}
	text := string(agent)

	for _, want := range []string{
		"Base rules here.",
		"# demo — api",
		"You will focus on the current files only:",
		"├── main.go",
		"└── handlers/",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("agent document missing %q:\n%s", want, text)
		}
	}

	treeData, err := os.ReadFile(desc.TreePath)
	if err != nil {
		t.Fatalf("read tree file: %v", err)
	}
	if !strings.Contains(string(treeData), "└── handlers/") {
		t.Errorf("tree file missing rendered line:\n%s", treeData)
	}
}

func TestWrite_NoBaseRules(t *testing.T) {
	root := t.TempDir()
	res := resolved(t, root, "web")

	w := NewWriter(filepath.Join(root, "out"), "demo", "", nil)
	desc, err := w.Write(res, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, _ := os.ReadFile(desc.AgentPath)
	if strings.HasPrefix(string(data), "\n") {
		t.Error("document should not start with a blank line when rules are absent")
	}
}

func TestLoadBaseRules(t *testing.T) {
	root := t.TempDir()
	if got := LoadBaseRules(root); got != "" {
		t.Errorf("missing rules file should yield empty string, got %q", got)
	}

	content := "# Rules\nBe careful.\n"
	if err := os.WriteFile(filepath.Join(root, RulesFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	if got := LoadBaseRules(root); got != "# Rules\nBe careful." {
		t.Errorf("LoadBaseRules = %q", got)
	}
}
