package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := &Configuration{
		ProjectTitle:      "demo",
		FocusDirectories:  []string{"api", "src/components"},
		ExcludeDirs:       []string{"node_modules"},
		ImportantDirs:     []string{"src"},
		IncludeExtensions: []string{".go"},
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad_MissingFocusField(t *testing.T) {
	path := writeConfig(t, "project_title: demo\nexclude_dirs: [dist]\n")

	cfg, err := Load(path)

	var shapeErr ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Contains(t, shapeErr.Error(), "missing")
	// The rest of the configuration is still usable.
	require.NotNil(t, cfg)
	assert.Equal(t, "demo", cfg.ProjectTitle)
	assert.Equal(t, []string{"dist"}, cfg.ExcludeDirs)
}

func TestLoad_FocusNotASequence(t *testing.T) {
	path := writeConfig(t, "project_title: demo\ntree_focus: api\n")

	cfg, err := Load(path)

	var shapeErr ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Contains(t, shapeErr.Error(), "not a sequence")
	require.NotNil(t, cfg)
	assert.Equal(t, "demo", cfg.ProjectTitle)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "\t: not yaml {{{")

	_, err := Load(path)
	require.Error(t, err)
	var shapeErr ShapeError
	assert.False(t, errors.As(err, &shapeErr), "syntax errors are not shape errors")
}

func TestSave_FieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := &Configuration{
		ProjectTitle:      "demo",
		FocusDirectories:  []string{"api"},
		ExcludeDirs:       []string{"dist"},
		ImportantDirs:     []string{"src"},
		IncludeExtensions: []string{".go"},
	}
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	order := []string{"project_title:", "tree_focus:", "exclude_dirs:", "important_dirs:", "include_extensions:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key)
		require.GreaterOrEqual(t, idx, 0, "key %s missing", key)
		assert.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}
}

func TestDefaults_AccessorsReturnCopies(t *testing.T) {
	defaults := NewDefaults()

	first := defaults.ExcludeDirs()
	first[0] = "mutated"

	second := defaults.ExcludeDirs()
	assert.NotEqual(t, "mutated", second[0], "defaults must be immutable")
}
