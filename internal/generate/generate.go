// Package generate orchestrates one full run: load configuration,
// resolve focus directories, render trees, write descriptor documents,
// and persist the synthesized configuration.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scopegen/scopegen/internal/catalog"
	"github.com/scopegen/scopegen/internal/classify"
	"github.com/scopegen/scopegen/internal/config"
	"github.com/scopegen/scopegen/internal/density"
	"github.com/scopegen/scopegen/internal/descriptor"
	"github.com/scopegen/scopegen/internal/focus"
	"github.com/scopegen/scopegen/internal/history"
	"github.com/scopegen/scopegen/internal/ignore"
	"github.com/scopegen/scopegen/internal/tree"
)

// FocusSource records how a run obtained its focus list.
type FocusSource string

const (
	SourceConfig   FocusSource = "config"
	SourceFallback FocusSource = "config-fallback"
	SourceDensity  FocusSource = "density"
	SourceTopLevel FocusSource = "top-level"
)

// Runner holds everything one generation run needs. Zero-value fields
// get sensible defaults in Run.
type Runner struct {
	// Root is the project root to scan.
	Root string
	// ConfigPath overrides the default <root>/scopegen.yaml.
	ConfigPath string
	// OutputDir is where descriptor documents land. Defaults to Root.
	OutputDir string
	// Catalog supplies code extensions for the density fallback.
	Catalog *catalog.Catalog
	// History records completed runs when non-nil.
	History *history.Store
	// Log defaults to a nop logger.
	Log *zap.Logger
}

// Result summarizes a completed run.
type Result struct {
	RunID       string
	ConfigPath  string
	Source      FocusSource
	Resolved    []focus.Resolved
	Descriptors []descriptor.Descriptor
	// Failed lists directories whose descriptor could not be written.
	Failed []string
}

// Run executes one generation pass. Descriptor failures are partial:
// the run continues with the remaining directories and reports them in
// Result.Failed. Only a completely unusable root is a hard error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.Log == nil {
		r.Log = zap.NewNop()
	}
	root, err := filepath.Abs(r.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	configPath := r.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(root, config.ConfigFileName)
	}
	outputDir := r.OutputDir
	if outputDir == "" {
		outputDir = root
	}

	defaults := config.NewDefaults()
	existing, focusList, source := r.loadFocus(configPath)

	cfg := existingOrEmpty(existing)
	resolver := focus.NewResolver(root, r.Log)
	resolved := resolver.ResolveAll(focus.ParseAll(focusList, cfg.PathSeparators))

	if len(resolved) == 0 {
		resolved, source = r.fallbackFocus(ctx, root, cfg, defaults, resolver)
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("no focus directories found under %s", root)
	}
	r.Log.Info("focus directories resolved",
		zap.Int("count", len(resolved)), zap.String("source", string(source)))

	extensions := cfg.IncludeExtensions
	if len(extensions) == 0 {
		extensions = defaults.IncludeExtensions()
	}
	excludes := effectiveExcludes(cfg.ExcludeDirs, defaults)
	classifier := classify.New(excludes, extensions, ignore.NewPredicate(root))
	renderer := tree.New(classifier, root)

	synth := config.Synthesize(existing, focusRels(resolved), presentExcludes(root, defaults), defaults, root)
	writer := descriptor.NewWriter(outputDir, synth.ProjectTitle, descriptor.LoadBaseRules(root), r.Log)

	result := &Result{
		RunID:      uuid.New().String(),
		ConfigPath: configPath,
		Source:     source,
		Resolved:   resolved,
	}

	started := time.Now()
	var recorded []history.Directory
	for i, res := range resolved {
		lines, err := renderer.Render(res.Path, tree.Options{
			MaxDepth:        tree.DefaultMaxDepth,
			CoveredPrefixes: coveredPrefixes(resolved, i),
		})
		if err != nil {
			r.Log.Warn("skipping focus directory", zap.String("dir", res.Rel), zap.Error(err))
			result.Failed = append(result.Failed, res.Rel)
			continue
		}
		desc, err := writer.Write(res, lines)
		if err != nil {
			r.Log.Warn("descriptor write failed", zap.String("dir", res.Rel), zap.Error(err))
			result.Failed = append(result.Failed, res.Rel)
			continue
		}
		result.Descriptors = append(result.Descriptors, desc)
		recorded = append(recorded, history.Directory{
			RunID:     result.RunID,
			Spec:      res.Spec.Raw,
			RelPath:   res.Rel,
			LineCount: len(lines),
		})
	}

	if err := config.Save(configPath, synth); err != nil {
		return result, err
	}

	if r.History != nil {
		err := r.History.RecordRun(history.Run{
			ID:             result.RunID,
			ProjectTitle:   synth.ProjectTitle,
			ProjectRoot:    root,
			StartedAt:      started.UTC().Format(time.RFC3339),
			DurationMillis: time.Since(started).Milliseconds(),
		}, recorded)
		if err != nil {
			r.Log.Warn("run not recorded", zap.Error(err))
		}
	}

	return result, nil
}

// Watch reruns generation every interval until the context is
// cancelled. The first run happens immediately; individual run failures
// are logged and do not stop the loop.
func (r *Runner) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if r.Log == nil {
		r.Log = zap.NewNop()
	}

	run := func() {
		res, err := r.Run(ctx)
		if err != nil {
			r.Log.Error("generation run failed", zap.Error(err))
			return
		}
		r.Log.Info("generation run complete",
			zap.String("run", res.RunID),
			zap.Int("descriptors", len(res.Descriptors)))
	}
	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run()
		}
	}
}

// loadFocus reads the configuration and decides the initial focus list.
// A missing file means no existing configuration; a shape problem keeps
// the partial configuration but swaps in the hardcoded fallback focus.
func (r *Runner) loadFocus(configPath string) (*config.Configuration, []string, FocusSource) {
	existing, err := config.Load(configPath)
	switch {
	case err == nil:
		return existing, existing.FocusDirectories, SourceConfig
	case errors.Is(err, fs.ErrNotExist):
		r.Log.Info("no configuration yet", zap.String("path", configPath))
		return nil, nil, SourceConfig
	default:
		var shapeErr config.ShapeError
		if errors.As(err, &shapeErr) {
			r.Log.Warn("configuration focus unusable, using fallback",
				zap.String("path", configPath), zap.Error(err))
			return existing, append([]string(nil), config.FallbackFocus...), SourceFallback
		}
		r.Log.Warn("configuration unreadable, starting fresh",
			zap.String("path", configPath), zap.Error(err))
		return nil, nil, SourceConfig
	}
}

// fallbackFocus runs the density scan, then the plain top-level
// listing, resolving whatever candidates come back.
func (r *Runner) fallbackFocus(ctx context.Context, root string, cfg *config.Configuration, defaults config.Defaults, resolver *focus.Resolver) ([]focus.Resolved, FocusSource) {
	important := cfg.ImportantDirs
	if len(important) == 0 {
		important = defaults.ImportantDirs()
	}
	scanner := density.New(
		r.catalogExtensions(ctx),
		effectiveExcludes(cfg.ExcludeDirs, defaults),
		density.WithImportantNames(important),
		density.WithLogger(r.Log),
	)

	if candidates := scanner.Scan(root); len(candidates) > 0 {
		if resolved := resolver.ResolveAll(rawSpecs(candidates)); len(resolved) > 0 {
			return resolved, SourceDensity
		}
	}
	if candidates := scanner.TopLevelDirs(root); len(candidates) > 0 {
		if resolved := resolver.ResolveAll(rawSpecs(candidates)); len(resolved) > 0 {
			return resolved, SourceTopLevel
		}
	}
	return nil, SourceTopLevel
}

func (r *Runner) catalogExtensions(ctx context.Context) []string {
	cat := r.Catalog
	if cat == nil {
		cat = catalog.New(catalog.WithLogger(r.Log))
	}
	return cat.List(ctx)
}

// rawSpecs wraps already-relative candidate paths as positional specs,
// bypassing separator interpretation.
func rawSpecs(rels []string) []focus.PathSpec {
	specs := make([]focus.PathSpec, 0, len(rels))
	for _, rel := range rels {
		specs = append(specs, focus.PathSpec{
			Raw:      rel,
			Segments: strings.Split(rel, "/"),
		})
	}
	return specs
}

// coveredPrefixes returns the relative paths of other resolved
// directories that live inside resolved[i], so its tree does not repeat
// subtrees rendered on their own.
func coveredPrefixes(resolved []focus.Resolved, i int) []string {
	var prefixes []string
	self := resolved[i].Rel
	for j, other := range resolved {
		if j == i {
			continue
		}
		if strings.HasPrefix(other.Rel, self+"/") {
			prefixes = append(prefixes, other.Rel)
		}
	}
	return prefixes
}

func focusRels(resolved []focus.Resolved) []string {
	rels := make([]string, len(resolved))
	for i, res := range resolved {
		rels[i] = res.Rel
	}
	return rels
}

// presentExcludes lists default-excluded directory names that actually
// exist at the top level, so the persisted exclude list reflects the
// project.
func presentExcludes(root string, defaults config.Defaults) []string {
	var present []string
	for _, name := range defaults.ExcludeDirs() {
		if info, err := os.Stat(filepath.Join(root, name)); err == nil && info.IsDir() {
			present = append(present, name)
		}
	}
	return present
}

// effectiveExcludes picks the configured exclude list, falling back to the
// defaults when the configuration has none. Hand-edits to the list are
// honored as-is.
func effectiveExcludes(configured []string, defaults config.Defaults) []string {
	if len(configured) > 0 {
		return append([]string(nil), configured...)
	}
	return defaults.ExcludeDirs()
}

func existingOrEmpty(cfg *config.Configuration) *config.Configuration {
	if cfg == nil {
		return &config.Configuration{}
	}
	return cfg
}
