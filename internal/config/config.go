// Package config defines the scopegen configuration, its defaults, and
// the synthesis rules that merge a fresh scan with a persisted file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default configuration filename under a project.
const ConfigFileName = "scopegen.yaml"

// Configuration is the in-memory form of the persisted file. Field
// order is a presentation contract: project_title first, tree_focus
// second, remaining sections in declaration order. yaml.v3 marshals
// struct fields in this order, which is exactly what the file promises.
type Configuration struct {
	ProjectTitle      string   `yaml:"project_title"`
	FocusDirectories  []string `yaml:"tree_focus"`
	ExcludeDirs       []string `yaml:"exclude_dirs"`
	ImportantDirs     []string `yaml:"important_dirs"`
	IncludeExtensions []string `yaml:"include_extensions"`
	PathSeparators    []string `yaml:"path_separators,omitempty"`
}

// FallbackFocus is the hardcoded minimal focus list used when a
// configuration's focus field is unusable.
var FallbackFocus = []string{"api", "app"}

// ShapeError reports a configuration whose tree_focus field is missing
// or not a sequence. Callers fall back to FallbackFocus rather than
// aborting.
type ShapeError struct {
	Path   string
	Reason string
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("config %s: tree_focus %s", e.Path, e.Reason)
}

// Defaults holds the built-in values for sections absent from an
// existing configuration. Constructed once at startup and treated as
// immutable: every accessor returns fresh copies.
type Defaults struct {
	importantDirs     []string
	excludeDirs       []string
	includeExtensions []string
}

// NewDefaults returns the built-in defaults.
func NewDefaults() Defaults {
	return Defaults{
		importantDirs: []string{
			"components", "pages", "app", "src", "lib", "utils", "hooks",
			"styles", "assets", "layouts", "services", "context", "types",
		},
		excludeDirs: []string{
			"node_modules", "dist", "build", ".next", "out", "__pycache__",
			"venv", "env", ".git", "coverage", "tmp", "temp", "fonts",
			"images", "img",
		},
		includeExtensions: []string{
			".py", ".ts", ".tsx", ".js", ".jsx", ".json", ".css", ".scss",
			".html", ".md", ".vue", ".svelte", ".go",
		},
	}
}

// ImportantDirs returns a copy of the default important-directory names.
func (d Defaults) ImportantDirs() []string {
	return append([]string(nil), d.importantDirs...)
}

// ExcludeDirs returns a copy of the default excluded directory names.
func (d Defaults) ExcludeDirs() []string {
	return append([]string(nil), d.excludeDirs...)
}

// IncludeExtensions returns a copy of the default extension allow-list.
func (d Defaults) IncludeExtensions() []string {
	return append([]string(nil), d.includeExtensions...)
}

// Load reads and parses the configuration at path.
//
// A missing file surfaces as an fs.ErrNotExist-wrapped error so callers
// can treat "no config yet" separately. A present file whose tree_focus
// field is missing or not a sequence returns the partially-decoded
// configuration together with a ShapeError.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		// Type errors decode everything else; fall through to the
		// shape check, which decides whether tree_focus was the victim.
	}

	if reason := focusShapeProblem(data); reason != "" {
		return &cfg, ShapeError{Path: path, Reason: reason}
	}
	return &cfg, nil
}

// focusShapeProblem inspects the raw document and reports why the
// tree_focus field is unusable, or "" when it is a proper sequence.
func focusShapeProblem(data []byte) string {
	var probe struct {
		TreeFocus yaml.Node `yaml:"tree_focus"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return "is unreadable"
	}
	switch probe.TreeFocus.Kind {
	case 0:
		return "is missing"
	case yaml.SequenceNode:
		return ""
	default:
		return "is not a sequence"
	}
}

// Save writes the configuration to path, creating parent directories as
// needed. Field order follows the Configuration declaration.
func Save(path string, cfg *Configuration) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
