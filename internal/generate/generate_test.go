package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopegen/scopegen/internal/catalog"
	"github.com/scopegen/scopegen/internal/config"
	"github.com/scopegen/scopegen/internal/history"
)

// fixtureProject builds a small project with two code-dense directories
// and one junk directory.
func fixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{
		"api/main.py",
		"api/handlers.py",
		"api/models.py",
		"web/src/index.ts",
		"web/src/app.ts",
		"web/src/util.ts",
		"node_modules/pkg/index.js",
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	}
	return root
}

func newRunner(root string) *Runner {
	return &Runner{
		Root:    root,
		Catalog: catalog.New(catalog.WithURL("")), // offline
	}
}

func TestRun_NoConfigUsesDensityFallback(t *testing.T) {
	root := fixtureProject(t)

	result, err := newRunner(root).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceDensity, result.Source)
	assert.Empty(t, result.Failed)
	require.NotEmpty(t, result.Descriptors)

	for _, desc := range result.Descriptors {
		_, err := os.Stat(desc.AgentPath)
		assert.NoError(t, err, "agent document for %s", desc.Name)
		_, err = os.Stat(desc.TreePath)
		assert.NoError(t, err, "tree file for %s", desc.Name)
	}

	cfg, err := config.Load(result.ConfigPath)
	require.NoError(t, err)
	assert.Contains(t, cfg.FocusDirectories, "api")
	assert.Contains(t, cfg.FocusDirectories, "web")
	assert.Contains(t, cfg.ExcludeDirs, "node_modules")
}

func TestRun_ConfiguredFocus(t *testing.T) {
	root := fixtureProject(t)
	configPath := filepath.Join(root, config.ConfigFileName)
	require.NoError(t, config.Save(configPath, &config.Configuration{
		ProjectTitle:     "demo",
		FocusDirectories: []string{"api"},
	}))

	result, err := newRunner(root).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceConfig, result.Source)
	require.Len(t, result.Resolved, 1)
	assert.Equal(t, "api", result.Resolved[0].Rel)

	require.Len(t, result.Descriptors, 1)
	data, err := os.ReadFile(result.Descriptors[0].AgentPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# demo — api")
	assert.Contains(t, string(data), "main.py")
}

func TestRun_ShapeErrorFallsBackToHardcodedFocus(t *testing.T) {
	root := fixtureProject(t)
	configPath := filepath.Join(root, config.ConfigFileName)
	require.NoError(t, os.WriteFile(configPath,
		[]byte("project_title: demo\ntree_focus: api\n"), 0o644))

	result, err := newRunner(root).Run(context.Background())
	require.NoError(t, err)

	// "api" resolves from the fallback pair; "app" does not exist and
	// is dropped.
	assert.Equal(t, SourceFallback, result.Source)
	require.Len(t, result.Resolved, 1)
	assert.Equal(t, "api", result.Resolved[0].Rel)
	// The partial configuration survives.
	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.ProjectTitle)
}

func TestRun_SecondRunReadsPersistedConfig(t *testing.T) {
	root := fixtureProject(t)
	runner := newRunner(root)

	first, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceDensity, first.Source)

	second, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceConfig, second.Source)

	// Excludes must not grow on a rerun over an unchanged project.
	cfg, err := config.Load(second.ConfigPath)
	require.NoError(t, err)
	firstCfg, err := config.Load(first.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, firstCfg.ExcludeDirs, cfg.ExcludeDirs)
}

func TestRun_NestedFocusIsNotRepeated(t *testing.T) {
	root := fixtureProject(t)
	require.NoError(t, config.Save(filepath.Join(root, config.ConfigFileName), &config.Configuration{
		ProjectTitle:     "demo",
		FocusDirectories: []string{"web", "web/src"},
	}))

	result, err := newRunner(root).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Descriptors, 2)

	var webDoc, srcDoc string
	for _, desc := range result.Descriptors {
		data, err := os.ReadFile(desc.AgentPath)
		require.NoError(t, err)
		if strings.Contains(desc.Name, "src") {
			srcDoc = string(data)
		} else {
			webDoc = string(data)
		}
	}
	assert.NotContains(t, webDoc, "index.ts", "covered subtree must not repeat")
	assert.Contains(t, srcDoc, "index.ts")
}

func TestRun_RecordsHistory(t *testing.T) {
	root := fixtureProject(t)
	store, err := history.New(history.Config{DataDir: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	defer store.Close()

	runner := newRunner(root)
	runner.History = store

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	runs, err := store.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, len(result.Descriptors), runs[0].DirectoryCount)

	dirs, err := store.RunDirectories(result.RunID)
	require.NoError(t, err)
	assert.Len(t, dirs, len(result.Descriptors))
}

func TestRun_MissingRoot(t *testing.T) {
	runner := newRunner(filepath.Join(t.TempDir(), "absent"))
	_, err := runner.Run(context.Background())
	assert.Error(t, err)
}
